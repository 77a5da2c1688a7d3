package playground

import (
	"context"
	"strings"

	"github.com/coderi421/adkit/pager"
	"github.com/coderi421/adkit/service"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/statement"
	"github.com/gotomicro/ekit/slice"
	"golang.org/x/sync/errgroup"
)

var (
	errInvalidDisplayStyle = &paramError{msg: "Invalid display style."}
	errInvalidTypeOverride = &paramError{msg: "Invalid typeOverride."}
	errUnknownPanel        = &paramError{msg: "Unknown panel."}
)

// paramError 是请求参数不对，不是远端的错误
type paramError struct {
	msg string
}

func (e *paramError) Error() string {
	return e.msg
}

// panelForm holds the fields every panel form posts.
type panelForm struct {
	FilterText   string
	DisplayStyle string
	TypeOverride string
}

// displayStyle defaults to "default" and rejects anything but default and
// list.
func (f panelForm) displayStyle() (string, error) {
	switch f.DisplayStyle {
	case "", "default":
		return "default", nil
	case "list":
		return "list", nil
	default:
		return "", errInvalidDisplayStyle
	}
}

type panelFunc func(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error)

// fetch 没有过滤条件的时候取回所有的结果，否则只取一页
func fetch[T any](ctx context.Context, s *service.Service[T], filterText string) ([]T, error) {
	if filterText == "" {
		return s.All(ctx, statement.New(""))
	}
	return s.Some(ctx, statement.New(filterText), pager.PageSize)
}

func listPanel[T service.Entity](newFn func(c *soap.Client) *service.Service[T], prefix string) panelFunc {
	return func(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
		rows, err := fetch(ctx, newFn(c), form.FilterText)
		if err != nil {
			return nil, err
		}
		return listResult(rows, prefix, ""), nil
	}
}

func adUnitsPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	style, err := form.displayStyle()
	if err != nil {
		return nil, err
	}
	units, err := fetch(ctx, service.AdUnits(c), form.FilterText)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 || style == "list" {
		return listResult(units, "ad_unit", ""), nil
	}
	return &panelResult{
		fragment: fragment{Items: adUnitTree(units)},
		payload:  units,
	}, nil
}

// adUnitTree 以第一个没有 parent 的 ad unit 为根构建整棵树。
// 过滤之后可能没有根，这时 parent 不在结果里的 ad unit 都当作根
func adUnitTree(units []service.AdUnit) []item {
	children := make(map[string][]service.AdUnit, len(units))
	present := make(map[string]struct{}, len(units))
	for _, u := range units {
		present[u.ID] = struct{}{}
	}
	var roots []service.AdUnit
	for _, u := range units {
		if u.ParentID == "" {
			if len(roots) == 0 {
				roots = append(roots, u)
			}
			continue
		}
		children[u.ParentID] = append(children[u.ParentID], u)
	}
	if len(roots) == 0 {
		for _, u := range units {
			if _, ok := present[u.ParentID]; !ok {
				roots = append(roots, u)
			}
		}
	}

	var build func(u service.AdUnit) item
	build = func(u service.AdUnit) item {
		it := newItem(u, "adunit")
		for _, child := range children[u.ID] {
			it.Children = append(it.Children, build(child))
		}
		return it
	}
	return slice.Map[service.AdUnit, item](roots, func(idx int, src service.AdUnit) item {
		return build(src)
	})
}

func customTargetingPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	switch form.TypeOverride {
	case "":
		return keysAndValues(ctx, c)
	case "key":
		keys, err := fetch(ctx, service.CustomTargetingKeys(c), form.FilterText)
		if err != nil {
			return nil, err
		}
		return listResult(keys, "keys", "Keys"), nil
	case "value":
		// values 太多，永远只取一页
		values, err := service.CustomTargetingValues(c).Some(ctx, statement.New(form.FilterText), pager.PageSize)
		if err != nil {
			return nil, err
		}
		return listResult(values, "values", "Values"), nil
	default:
		return nil, errInvalidTypeOverride
	}
}

// keysAndValues lists every key with its values nested below it.
func keysAndValues(ctx context.Context, c *soap.Client) (*panelResult, error) {
	keys, err := service.CustomTargetingKeys(c).All(ctx, statement.New(""))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return messageResult(noResults), nil
	}

	ids := slice.Map[service.CustomTargetingKey, any](keys, func(idx int, src service.CustomTargetingKey) any {
		return src.ID
	})
	st, err := statement.NewBuilder().Where(statement.C("customTargetingKeyId").In(ids...)).Build()
	if err != nil {
		return nil, err
	}
	values, err := service.CustomTargetingValues(c).All(ctx, st)
	if err != nil {
		return nil, err
	}

	byKey := make(map[int64][]service.CustomTargetingValue, len(keys))
	for _, v := range values {
		byKey[v.CustomTargetingKeyID] = append(byKey[v.CustomTargetingKeyID], v)
	}
	items := make([]item, 0, len(keys))
	for _, k := range keys {
		it := newItem(k, "customtargetingkey")
		it.Children = newItems(byKey[k.ID], "customtargetingvalue")
		items = append(items, it)
	}
	return &panelResult{
		fragment: fragment{Items: items},
		payload: map[string]any{
			"keys":   keys,
			"values": values,
		},
	}, nil
}

func ordersPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	style, err := form.displayStyle()
	if err != nil {
		return nil, err
	}

	var (
		orders    []service.Order
		lineItems []service.LineItem
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if form.TypeOverride != "lineitem" {
		eg.Go(func() error {
			var err error
			orders, err = fetch(egCtx, service.Orders(c), form.FilterText)
			return err
		})
	}
	if form.TypeOverride != "order" {
		eg.Go(func() error {
			var err error
			lineItems, err = fetch(egCtx, service.LineItems(c), form.FilterText)
			return err
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"orders":    orders,
		"lineItems": lineItems,
	}
	if style == "default" {
		if len(orders) == 0 {
			return messageResult(noResults), nil
		}
		byOrder := make(map[int64][]service.LineItem, len(orders))
		for _, li := range lineItems {
			byOrder[li.OrderID] = append(byOrder[li.OrderID], li)
		}
		items := make([]item, 0, len(orders))
		for _, o := range orders {
			it := newItem(o, "order")
			it.Children = newItems(byOrder[o.ID], "lineitem")
			items = append(items, it)
		}
		return &panelResult{fragment: fragment{Items: items}, payload: payload}, nil
	}

	if len(orders) == 0 && len(lineItems) == 0 {
		return messageResult(noResults), nil
	}
	switch form.TypeOverride {
	case "order":
		return listResult(orders, "order", "Orders"), nil
	case "lineitem":
		return listResult(lineItems, "lineitem", "LineItems"), nil
	default:
		items := append(newItems(lineItems, "lineitem"), newItems(orders, "order")...)
		return &panelResult{fragment: fragment{Items: items}, payload: payload}, nil
	}
}

func licasPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	licas, err := fetch(ctx, service.LineItemCreativeAssociations(c), form.FilterText)
	if err != nil {
		return nil, err
	}
	if len(licas) == 0 {
		return &panelResult{fragment: fragment{Message: noResults}, payload: licas}, nil
	}
	rows := slice.Map[service.LineItemCreativeAssociation, licaRow](licas,
		func(idx int, src service.LineItemCreativeAssociation) licaRow {
			d, _ := details(src)
			return licaRow{
				LineItemID: src.LineItemID,
				CreativeID: src.CreativeID,
				Status:     src.Status,
				Ref:        "lica-" + src.EntityID(),
				Details:    d,
			}
		})
	return &panelResult{fragment: fragment{Licas: rows}, payload: licas}, nil
}

// rolesPanel 角色不能按 statement 过滤，filterText 被忽略
func rolesPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	roles, err := service.Roles(c).GetAllRoles(ctx)
	if err != nil {
		return nil, err
	}
	return listResult(roles, "role", ""), nil
}

// networksPanel lists every network of the user, each described by its own
// getCurrentNetwork call.
func networksPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	networks, err := service.Networks(c.WithNetwork("")).GetAllNetworks(ctx)
	if err != nil {
		return nil, err
	}
	current := make([]service.Network, 0, len(networks))
	for _, n := range networks {
		cur, err := service.Networks(c.WithNetwork(n.NetworkCode)).GetCurrentNetwork(ctx)
		if err != nil {
			return nil, err
		}
		current = append(current, *cur)
	}
	return listResult(current, "network", ""), nil
}

const pqlPrompt = "Open the select statement input to run a PQL query."

func pqlPanel(ctx context.Context, c *soap.Client, form panelForm) (*panelResult, error) {
	if form.FilterText == "" {
		return messageResult(&message{Text: pqlPrompt}), nil
	}
	rs, err := service.PQL(c).Select(ctx, statement.New(form.FilterText))
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return messageResult(noResults), nil
	}
	t := &table{Labels: rs.Labels(), Rows: make([][]string, 0, len(rs.Rows))}
	for _, row := range rs.Rows {
		t.Rows = append(t.Rows, slice.Map[service.Cell, string](row.Values, func(idx int, src service.Cell) string {
			return src.Value
		}))
	}
	return &panelResult{fragment: fragment{Table: t}, payload: rs}, nil
}

// readForm 和原来的页面一样，filterText 里的反斜杠会被去掉
func readForm(values func(key string) string) panelForm {
	return panelForm{
		FilterText:   strings.TrimSpace(strings.ReplaceAll(values("filterText"), `\`, "")),
		DisplayStyle: values("displayStyle"),
		TypeOverride: values("typeOverride"),
	}
}

const keySep = "\x00"

// cacheKey 以 session id 开头，切换 network 的时候按前缀清理
func cacheKey(sessID, network, panel, format string, form panelForm) string {
	return strings.Join([]string{
		sessID, network, panel, format,
		form.FilterText, form.DisplayStyle, form.TypeOverride,
	}, keySep)
}
