package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/coderi421/adkit/pager"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(op string, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		`<` + op + `Response xmlns="https://www.google.com/apis/ads/publisher/v201211">` + body +
		`</` + op + `Response></soap:Body></soap:Envelope>`
}

// fakeService 记录收到的请求体，按 handler 返回结果
type fakeService struct {
	bodies  []string
	paths   []string
	handler func(body string) string
}

func (f *fakeService) client(t *testing.T) *soap.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.bodies = append(f.bodies, string(data))
		f.paths = append(f.paths, r.URL.Path)
		_, _ = io.WriteString(w, f.handler(string(data)))
	}))
	t.Cleanup(srv.Close)
	return soap.NewClient(srv.URL, soap.WithNetworkCode("1234"))
}

var offsetPattern = regexp.MustCompile(`OFFSET (\d+)</query>`)

// labelPages 生成 total 个 label，按照请求中的 OFFSET 返回
func labelPages(total int) func(body string) string {
	return func(body string) string {
		offset := 0
		if m := offsetPattern.FindStringSubmatch(body); m != nil {
			offset, _ = strconv.Atoi(m[1])
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "<rval><totalResultSetSize>%d</totalResultSetSize><startIndex>%d</startIndex>", total, offset)
		for i := offset; i < total && i < offset+pager.PageSize; i++ {
			fmt.Fprintf(&sb, "<results><id>%d</id><name>label-%d</name><isActive>true</isActive></results>", i+1, i+1)
		}
		sb.WriteString("</rval>")
		return envelope("getLabelsByStatement", sb.String())
	}
}

func TestService_GetByStatement(t *testing.T) {
	f := &fakeService{handler: labelPages(2)}
	svc := Labels(f.client(t))

	page, err := svc.GetByStatement(context.Background(),
		statement.New("WHERE isActive = :active", statement.Var("active", statement.Bool(true))))
	require.NoError(t, err)

	assert.Equal(t, &pager.Page[Label]{
		Results: []Label{
			{ID: 1, Name: "label-1", IsActive: true},
			{ID: 2, Name: "label-2", IsActive: true},
		},
		TotalResultSetSize: 2,
	}, page)
	require.Len(t, f.bodies, 1)
	assert.Equal(t, "/LabelService", f.paths[0])
	assert.Contains(t, f.bodies[0], "<getLabelsByStatement ")
	assert.Contains(t, f.bodies[0], "<filterStatement><query>WHERE isActive = :active</query>")
}

func TestService_All(t *testing.T) {
	f := &fakeService{handler: labelPages(1037)}
	svc := Labels(f.client(t))

	labels, err := svc.All(context.Background(), statement.New("WHERE isActive = true"))
	require.NoError(t, err)
	require.Len(t, labels, 1037)
	assert.Equal(t, int64(1037), labels[1036].ID)

	require.Len(t, f.bodies, 3)
	assert.Contains(t, f.bodies[0], "<query>WHERE isActive = true LIMIT 500 OFFSET 0</query>")
	assert.Contains(t, f.bodies[1], "<query>WHERE isActive = true LIMIT 500 OFFSET 500</query>")
	assert.Contains(t, f.bodies[2], "<query>WHERE isActive = true LIMIT 500 OFFSET 1000</query>")
}

func TestService_Some(t *testing.T) {
	f := &fakeService{handler: labelPages(20)}
	svc := Labels(f.client(t))

	labels, err := svc.Some(context.Background(), statement.New("WHERE name LIKE 'label%'"), 5)
	require.NoError(t, err)
	assert.Len(t, labels, 5)
	require.Len(t, f.bodies, 1)
	assert.Contains(t, f.bodies[0], "<query>WHERE name LIKE &#39;label%&#39;</query>")
}

func TestService_PerformAction(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		want     *UpdateResult
	}{
		{
			name:     "changes",
			response: envelope("performLabelAction", "<rval><numChanges>3</numChanges></rval>"),
			want:     &UpdateResult{NumChanges: 3},
		},
		{
			name:     "no rval",
			response: envelope("performLabelAction", ""),
			want:     &UpdateResult{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeService{handler: func(string) string { return tc.response }}
			svc := Labels(f.client(t))

			st, err := IDFilter([]int64{7, 8, 9})
			require.NoError(t, err)
			res, err := svc.PerformAction(context.Background(), Action{Type: "DeactivateLabels"}, st)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)

			require.Len(t, f.bodies, 1)
			body := f.bodies[0]
			assert.Contains(t, body, `<labelAction xsi:type="DeactivateLabels"></labelAction>`)
			assert.Contains(t, body, "<query>WHERE id IN (:value1,:value2,:value3)</query>")
			assert.Contains(t, body, `<key>value3</key><value xsi:type="NumberValue"><value>9</value></value>`)
		})
	}
}

func TestService_Fault(t *testing.T) {
	f := &fakeService{handler: func(string) string {
		return `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault>` +
			`<faultcode>soap:Server</faultcode><faultstring>[PermissionError.PERMISSION_DENIED @ ]</faultstring>` +
			`<detail><ApiExceptionFault><errors><errorString>PermissionError.PERMISSION_DENIED</errorString></errors></ApiExceptionFault></detail>` +
			`</soap:Fault></soap:Body></soap:Envelope>`
	}}
	svc := Orders(f.client(t))

	_, err := svc.All(context.Background(), statement.New(""))
	fault, ok := soap.AsFault(err)
	require.True(t, ok)
	assert.True(t, fault.HasError("PermissionError.PERMISSION_DENIED"))
	assert.Len(t, f.bodies, 1)
}

func TestIDFilter(t *testing.T) {
	st, err := IDFilter([]string{"ca-1", "ca-2"})
	require.NoError(t, err)
	assert.Equal(t, "WHERE id IN (:value1,:value2)", st.Query)
	assert.Equal(t, []statement.BindVariable{
		statement.Var("value1", statement.Text("ca-1")),
		statement.Var("value2", statement.Text("ca-2")),
	}, st.Values)

	_, err = IDFilter([]int64{})
	assert.ErrorIs(t, err, statement.ErrEmptyInList)
}

func TestNetworkService(t *testing.T) {
	f := &fakeService{handler: func(body string) string {
		if strings.Contains(body, "getAllNetworks") {
			return envelope("getAllNetworks",
				"<rval><id>1</id><displayName>First</displayName><networkCode>111</networkCode></rval>"+
					"<rval><id>2</id><displayName>Second</displayName><networkCode>222</networkCode></rval>")
		}
		return envelope("getCurrentNetwork",
			"<rval><id>2</id><displayName>Second</displayName><networkCode>222</networkCode><timeZone>Europe/Berlin</timeZone></rval>")
	}}
	svc := Networks(f.client(t))

	networks, err := svc.GetAllNetworks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Network{
		{ID: 1, DisplayName: "First", NetworkCode: "111"},
		{ID: 2, DisplayName: "Second", NetworkCode: "222"},
	}, networks)

	current, err := svc.GetCurrentNetwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", current.TimeZone)
	assert.Equal(t, "/NetworkService", f.paths[1])
}

func TestPQLService_Select(t *testing.T) {
	f := &fakeService{handler: func(string) string {
		return envelope("select",
			`<rval><columnTypes><labelName>id</labelName></columnTypes><columnTypes><labelName>name</labelName></columnTypes>`+
				`<rows><values xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="NumberValue"><value>1</value></values>`+
				`<values xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="TextValue"><value>US</value></values></rows></rval>`)
	}}
	svc := PQL(f.client(t))

	rs, err := svc.Select(context.Background(), statement.New("SELECT Id, Name FROM Country LIMIT 1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rs.Labels())
	assert.Equal(t, []Row{{Values: []Cell{{Type: "NumberValue", Value: "1"}, {Type: "TextValue", Value: "US"}}}}, rs.Rows)
	assert.Contains(t, f.bodies[0], "<selectStatement><query>SELECT Id, Name FROM Country LIMIT 1</query>")
	assert.Equal(t, "/PublisherQueryLanguageService", f.paths[0])
}

func TestPQLService_SelectEmpty(t *testing.T) {
	f := &fakeService{handler: func(string) string { return envelope("select", "") }}
	rs, err := PQL(f.client(t)).Select(context.Background(), statement.New("SELECT Id FROM Country"))
	require.NoError(t, err)
	assert.Nil(t, rs)
}

func TestLookup(t *testing.T) {
	f := &fakeService{handler: labelPages(3)}
	c := f.client(t)

	newFinder, ok := Lookup("labels")
	require.True(t, ok)
	finder := newFinder(c)
	assert.Equal(t, "LabelService", finder.Descriptor().Service)

	rows, err := finder.FindAll(context.Background(), statement.New(""))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "3", rows[2].EntityID())
	assert.Equal(t, "label-3", rows[2].EntityName())

	var pages int
	err = finder.Each(context.Background(), statement.New(""), func(rows []Entity) error {
		pages++
		assert.Len(t, rows, 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	_, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Contains(t, Names(), "ad-units")
	assert.Contains(t, Names(), "licas")
}

func TestDescriptor(t *testing.T) {
	testCases := []struct {
		desc       Descriptor
		wantGet    string
		wantAction string
		wantElem   string
	}{
		{desc: adUnitDesc, wantGet: "getAdUnitsByStatement", wantAction: "performAdUnitAction", wantElem: "adUnitAction"},
		{desc: licaDesc, wantGet: "getLineItemCreativeAssociationsByStatement",
			wantAction: "performLineItemCreativeAssociationAction", wantElem: "lineItemCreativeAssociationAction"},
		{desc: customTargetingValueDesc, wantGet: "getCustomTargetingValuesByStatement",
			wantAction: "performCustomTargetingValueAction", wantElem: "customTargetingValueAction"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc.Entity, func(t *testing.T) {
			assert.Equal(t, tc.wantGet, tc.desc.getOperation())
			assert.Equal(t, tc.wantAction, tc.desc.actionOperation())
			assert.Equal(t, tc.wantElem, tc.desc.actionElement())
		})
	}
}
