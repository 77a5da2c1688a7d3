package playground

import (
	"github.com/coderi421/adkit/service"
	"github.com/gotomicro/ekit/slice"
)

var noResults = &message{Text: "No results found."}

type message struct {
	Error bool
	Text  string
}

// item 是列表或者树里面的一行
type item struct {
	Name     string
	ID       string
	Ref      string
	Details  string
	Children []item
}

type licaRow struct {
	LineItemID int64
	CreativeID int64
	Status     string
	Ref        string
	Details    string
}

type table struct {
	Labels []string
	Rows   [][]string
}

// fragment is the data of the "fragment" template. Every field is optional
// and they render in declaration order.
type fragment struct {
	Title   string
	Message *message
	Items   []item
	Licas   []licaRow
	Table   *table
}

// panelResult carries both renderings of a panel: the HTML fragment and the
// payload used for format=json.
type panelResult struct {
	fragment fragment
	payload  any
}

func messageResult(msg *message) *panelResult {
	return &panelResult{
		fragment: fragment{Message: msg},
		payload:  map[string]string{"message": msg.Text},
	}
}

func newItem(e service.Entity, prefix string) item {
	ref := e.EntityID()
	if prefix != "" {
		ref = prefix + "-" + ref
	}
	// 实体都是结构体，不会出错
	d, _ := details(e)
	return item{
		Name:    e.EntityName(),
		ID:      e.EntityID(),
		Ref:     ref,
		Details: d,
	}
}

func newItems[T service.Entity](rows []T, prefix string) []item {
	return slice.Map[T, item](rows, func(idx int, src T) item {
		return newItem(src, prefix)
	})
}

// listResult renders rows as a name (id) list, or "No results found." when
// rows is empty.
func listResult[T service.Entity](rows []T, prefix string, title string) *panelResult {
	res := &panelResult{
		fragment: fragment{Title: title},
		payload:  rows,
	}
	if len(rows) == 0 {
		res.fragment.Message = noResults
		res.payload = []T{}
		return res
	}
	res.fragment.Items = newItems(rows, prefix)
	return res
}
