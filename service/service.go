// Package service contains typed proxies for the remote ad service. Every
// listable entity is served by the same generic Service, which knows how to
// name the remote operations and how to page through them.
package service

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/coderi421/adkit/pager"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/statement"
)

// Descriptor names the remote operations of one entity, e.g.
// Service=LabelService, Entity=Label, Plural=Labels gives
// getLabelsByStatement and performLabelAction.
type Descriptor struct {
	Service string
	Entity  string
	Plural  string
}

func (d Descriptor) getOperation() string {
	return "get" + d.Plural + "ByStatement"
}

func (d Descriptor) actionOperation() string {
	return "perform" + d.Entity + "Action"
}

// actionElement 例如 labelAction
func (d Descriptor) actionElement() string {
	return strings.ToLower(d.Entity[:1]) + d.Entity[1:] + "Action"
}

// Action is a bulk action applied to every row matching a statement.
// Type is the concrete action name, e.g. DeactivateLabels.
type Action struct {
	Type string
}

func (a Action) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xsi:type"}, Value: a.Type})
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type UpdateResult struct {
	NumChanges int `xml:"numChanges" json:"numChanges"`
}

type Service[T any] struct {
	client *soap.Client
	desc   Descriptor
}

func New[T any](c *soap.Client, desc Descriptor) *Service[T] {
	return &Service[T]{client: c, desc: desc}
}

func (s *Service[T]) Descriptor() Descriptor {
	return s.desc
}

type getByStatementRequest struct {
	Filter soap.Statement `xml:"filterStatement"`
}

type page[T any] struct {
	TotalResultSetSize int `xml:"totalResultSetSize"`
	StartIndex         int `xml:"startIndex"`
	Results            []T `xml:"results"`
}

// GetByStatement fetches a single page. The statement is sent as is.
func (s *Service[T]) GetByStatement(ctx context.Context, st statement.Statement) (*pager.Page[T], error) {
	var resp page[T]
	err := s.client.Invoke(ctx, &soap.Invocation{
		Service:   s.desc.Service,
		Operation: s.desc.getOperation(),
		Request:   getByStatementRequest{Filter: soap.Statement(st)},
		Response:  &resp,
		Statement: &st,
	})
	if err != nil {
		return nil, err
	}
	return &pager.Page[T]{
		Results:            resp.Results,
		StartIndex:         resp.StartIndex,
		TotalResultSetSize: resp.TotalResultSetSize,
	}, nil
}

type performActionRequest struct {
	name   string
	action Action
	filter soap.Statement
}

func (r performActionRequest) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.EncodeElement(r.action, xml.StartElement{Name: xml.Name{Local: r.name}}); err != nil {
		return err
	}
	if err := e.EncodeElement(r.filter, xml.StartElement{Name: xml.Name{Local: "filterStatement"}}); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// PerformAction applies action to every row matched by st. An empty response
// counts as zero changes.
func (s *Service[T]) PerformAction(ctx context.Context, action Action, st statement.Statement) (*UpdateResult, error) {
	var res UpdateResult
	err := s.client.Invoke(ctx, &soap.Invocation{
		Service:   s.desc.Service,
		Operation: s.desc.actionOperation(),
		Request:   performActionRequest{name: s.desc.actionElement(), action: action, filter: soap.Statement(st)},
		Response:  &res,
		Statement: &st,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// All pages through every row matching base.
func (s *Service[T]) All(ctx context.Context, base statement.Statement, opts ...pager.Option) ([]T, error) {
	return pager.FetchAll[T](ctx, s.GetByStatement, base, opts...)
}

// Some returns at most max rows of the first page matching filter.
func (s *Service[T]) Some(ctx context.Context, filter statement.Statement, max int) ([]T, error) {
	return pager.FetchUpTo[T](ctx, s.GetByStatement, filter, max)
}

// Each streams the matching rows page by page.
func (s *Service[T]) Each(ctx context.Context, base statement.Statement, fn func(*pager.Page[T]) error) error {
	return pager.ForEach[T](ctx, s.GetByStatement, base, fn)
}

// IDFilter builds the action statement WHERE id IN (...) with one bind
// variable per id.
func IDFilter[ID any](ids []ID) (statement.Statement, error) {
	vals := make([]any, 0, len(ids))
	for _, id := range ids {
		vals = append(vals, id)
	}
	return statement.NewBuilder().Where(statement.C("id").In(vals...)).Build()
}
