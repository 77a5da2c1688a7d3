package service

import (
	"context"

	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/statement"
)

type ColumnType struct {
	LabelName string `xml:"labelName" json:"labelName"`
}

// Cell 是一个单元格，Type 例如 TextValue / NumberValue
type Cell struct {
	Type  string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type,omitempty"`
	Value string `xml:"value" json:"value"`
}

type Row struct {
	Values []Cell `xml:"values" json:"values"`
}

// ResultSet is a table returned by a select query.
type ResultSet struct {
	ColumnTypes []ColumnType `xml:"columnTypes" json:"columnTypes"`
	Rows        []Row        `xml:"rows" json:"rows"`
}

// Labels returns the column labels in order.
func (r *ResultSet) Labels() []string {
	res := make([]string, 0, len(r.ColumnTypes))
	for _, c := range r.ColumnTypes {
		res = append(res, c.LabelName)
	}
	return res
}

// PQLService runs select statements such as
//
//	SELECT Id, Name FROM Line_Item WHERE Status = :status LIMIT 10
type PQLService struct {
	client *soap.Client
}

func PQL(c *soap.Client) *PQLService {
	return &PQLService{client: c}
}

type selectRequest struct {
	Select soap.Statement `xml:"selectStatement"`
}

// Select returns nil when the response carries no result set.
func (s *PQLService) Select(ctx context.Context, st statement.Statement) (*ResultSet, error) {
	var rs *ResultSet
	err := s.client.Invoke(ctx, &soap.Invocation{
		Service:   "PublisherQueryLanguageService",
		Operation: "select",
		Request:   selectRequest{Select: soap.Statement(st)},
		Response:  &rs,
		Statement: &st,
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}
