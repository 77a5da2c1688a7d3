package playground

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coderi421/adkit/session"
	"github.com/coderi421/adkit/session/cookie"
	"github.com/coderi421/adkit/session/memory"
	"github.com/coderi421/adkit/soap"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const goodToken = "good-token"

var (
	opPattern      = regexp.MustCompile(`<soapenv:Body><(\w+) xmlns=`)
	networkPattern = regexp.MustCompile(`<networkCode>(\w+)</networkCode>`)
)

type call struct {
	service string
	op      string
	network string
	body    string
}

// fakeAdService 按 Service.operation 返回 rval，没有注册的操作返回 fault
type fakeAdService struct {
	mu      sync.Mutex
	calls   []call
	replies map[string]func(c call) string
}

func (f *fakeAdService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c := call{service: strings.TrimPrefix(r.URL.Path, "/"), body: string(data)}
	if m := opPattern.FindStringSubmatch(c.body); m != nil {
		c.op = m[1]
	}
	if m := networkPattern.FindStringSubmatch(c.body); m != nil {
		c.network = m[1]
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	reply, ok := f.replies[c.service+"."+c.op]
	if r.Header.Get("Authorization") != "Bearer "+goodToken {
		ok = false
	}
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, faultEnvelope)
		return
	}
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>`+
		`<`+c.op+`Response xmlns="https://www.google.com/apis/ads/publisher/v201211">`+reply(c)+
		`</`+c.op+`Response></soap:Body></soap:Envelope>`)
}

func (f *fakeAdService) callsTo(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []call
	for _, c := range f.calls {
		if c.op == op {
			res = append(res, c)
		}
	}
	return res
}

const faultEnvelope = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault>` +
	`<faultcode>soap:Server</faultcode><faultstring>[AuthenticationError.NOT_WHITELISTED_FOR_API_ACCESS @ ]</faultstring>` +
	`<detail><ApiExceptionFault xmlns="https://www.google.com/apis/ads/publisher/v201211"><errors>` +
	`<fieldPath></fieldPath><trigger></trigger><errorString>AuthenticationError.NOT_WHITELISTED_FOR_API_ACCESS</errorString>` +
	`</errors></ApiExceptionFault></detail></soap:Fault></soap:Body></soap:Envelope>`

func static(body string) func(c call) string {
	return func(call) string {
		return body
	}
}

func page(total int, results string) func(c call) string {
	return static(fmt.Sprintf("<rval><totalResultSetSize>%d</totalResultSetSize><startIndex>0</startIndex>%s</rval>", total, results))
}

func networksReply(c call) string {
	return `<rval><id>1</id><displayName>Sandbox</displayName><networkCode>1234</networkCode></rval>` +
		`<rval><id>2</id><displayName>Staging</displayName><networkCode>5678</networkCode></rval>`
}

func currentNetworkReply(c call) string {
	ids := map[string]int{"1234": 1, "5678": 2}
	names := map[string]string{"1234": "Sandbox", "5678": "Staging"}
	return fmt.Sprintf(`<rval><id>%d</id><displayName>%s</displayName><networkCode>%s</networkCode></rval>`,
		ids[c.network], names[c.network], c.network)
}

func newFake() *fakeAdService {
	return &fakeAdService{replies: map[string]func(c call) string{
		"NetworkService.getAllNetworks":    networksReply,
		"NetworkService.getCurrentNetwork": currentNetworkReply,
		"CompanyService.getCompaniesByStatement": page(2,
			`<results><id>1</id><name>Acme</name><type>ADVERTISER</type></results>`+
				`<results><id>2</id><name>Tom &amp; Jerry</name><type>AGENCY</type></results>`),
		"LabelService.getLabelsByStatement": page(0, ""),
		"InventoryService.getAdUnitsByStatement": page(3,
			`<results><id>1</id><hasChildren>true</hasChildren><name>Root</name></results>`+
				`<results><id>2</id><parentId>1</parentId><hasChildren>true</hasChildren><name>Sports</name></results>`+
				`<results><id>3</id><parentId>2</parentId><hasChildren>false</hasChildren><name>Football</name></results>`),
		"CustomTargetingService.getCustomTargetingKeysByStatement": page(1,
			`<results><id>10</id><name>gender</name></results>`),
		"CustomTargetingService.getCustomTargetingValuesByStatement": page(1,
			`<results><customTargetingKeyId>10</customTargetingKeyId><id>100</id><name>male</name></results>`),
		"LineItemCreativeAssociationService.getLineItemCreativeAssociationsByStatement": page(1,
			`<results><lineItemId>5</lineItemId><creativeId>6</creativeId><status>ACTIVE</status></results>`),
		"OrderService.getOrdersByStatement": page(1,
			`<results><id>7</id><name>Q1</name></results>`),
		"LineItemService.getLineItemsByStatement": page(2,
			`<results><id>70</id><orderId>7</orderId><name>Banner</name></results>`+
				`<results><id>71</id><orderId>7</orderId><name>Video</name></results>`),
		"UserService.getAllRoles": static(`<rval><id>1</id><name>Administrator</name></rval>`),
		"PublisherQueryLanguageService.select": func(c call) string {
			if strings.Contains(c.body, "Nothing") {
				return ""
			}
			return `<rval><columnTypes><labelName>Id</labelName></columnTypes><columnTypes><labelName>Name</labelName></columnTypes>` +
				`<rows><values xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="NumberValue"><value>1</value></values>` +
				`<values xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="TextValue"><value>Line A</value></values></rows></rval>`
		},
	}}
}

// browser 保存 cookie，模拟一个登录用户
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, f *fakeAdService, opts ...Option) (*browser, *App) {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	m := &session.Manager{
		Store:      memory.NewStore(time.Minute),
		Propagator: cookie.NewPropagator("adkit_sess"),
		SessCtxKey: "_sess",
	}
	app, err := New(m, func(token string, networkCode string) *soap.Client {
		return soap.NewClient(srv.URL,
			soap.WithNetworkCode(networkCode),
			soap.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})))
	}, opts...)
	require.NoError(t, err)
	return &browser{t: t, handler: app.NewServer(), cookies: map[string]*http.Cookie{}}, app
}

func (b *browser) do(method string, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	b.handler.ServeHTTP(recorder, req)
	for _, c := range recorder.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return recorder
}

func (b *browser) login() {
	resp := b.do(http.MethodPost, "/login", url.Values{"token": {goodToken}})
	require.Equal(b.t, http.StatusSeeOther, resp.Code)
	require.Equal(b.t, "/", resp.Header().Get("Location"))
}

func TestPanels_Golden(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		form   url.Values
		golden string
	}{
		{
			name:   "companies",
			path:   "/panels/companies",
			form:   url.Values{"filterText": {""}},
			golden: "companies",
		},
		{
			name:   "ad unit tree",
			path:   "/panels/ad-units",
			form:   url.Values{"displayStyle": {"default"}},
			golden: "ad_unit_tree",
		},
		{
			name:   "custom targeting",
			path:   "/panels/custom-targeting",
			form:   url.Values{},
			golden: "custom_targeting",
		},
		{
			name:   "licas",
			path:   "/panels/licas",
			form:   url.Values{},
			golden: "licas",
		},
		{
			name:   "orders",
			path:   "/panels/orders",
			form:   url.Values{"displayStyle": {"default"}},
			golden: "orders",
		},
		{
			name:   "pql",
			path:   "/pql",
			form:   url.Values{"filterText": {`SELECT Id, Name FROM Line_Item WHERE Name = \'Line A\'`}},
			golden: "pql",
		},
		{
			name:   "networks",
			path:   "/networks",
			golden: "networks",
		},
	}
	b, _ := newBrowser(t, newFake())
	b.login()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodPost
			if tc.form == nil {
				method = http.MethodGet
			}
			resp := b.do(method, tc.path, tc.form)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", resp.Header().Get("Content-Type"))
			g.Assert(t, tc.golden, resp.Body.Bytes())
		})
	}
}

func TestPanels_Messages(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		form     url.Values
		wantCode int
		wantBody string
	}{
		{
			name:     "no results",
			path:     "/panels/labels",
			form:     url.Values{},
			wantCode: http.StatusOK,
			wantBody: `<p class="dfp-info">No results found.</p>`,
		},
		{
			name:     "keys only",
			path:     "/panels/custom-targeting",
			form:     url.Values{"typeOverride": {"key"}, "filterText": {"WHERE name = 'nope'"}},
			wantCode: http.StatusOK,
			wantBody: `<b>Keys</b><ul><li>gender (10)<a href="#" class="dfp-details-link" rel="dfp-details-keys-10">[details]</a>` +
				`<div class="dfp-details" id="dfp-details-keys-10"><pre>CustomTargetingKey
  ID: 10
  Name: gender</pre></div></li></ul>`,
		},
		{
			name:     "invalid display style",
			path:     "/panels/ad-units",
			form:     url.Values{"displayStyle": {"grid"}},
			wantCode: http.StatusBadRequest,
			wantBody: `<p class="dfp-error">Error: Invalid display style.</p>`,
		},
		{
			name:     "invalid type override",
			path:     "/panels/custom-targeting",
			form:     url.Values{"typeOverride": {"both"}},
			wantCode: http.StatusBadRequest,
			wantBody: `<p class="dfp-error">Error: Invalid typeOverride.</p>`,
		},
		{
			name:     "unknown panel",
			path:     "/panels/reports",
			form:     url.Values{},
			wantCode: http.StatusNotFound,
			wantBody: `<p class="dfp-error">Error: Unknown panel.</p>`,
		},
		{
			name:     "pql prompt",
			path:     "/pql",
			form:     url.Values{"filterText": {""}},
			wantCode: http.StatusOK,
			wantBody: `<p class="dfp-info">Open the select statement input to run a PQL query.</p>`,
		},
		{
			name:     "pql without result set",
			path:     "/pql",
			form:     url.Values{"filterText": {"SELECT Id FROM Nothing"}},
			wantCode: http.StatusOK,
			wantBody: `<p class="dfp-info">No results found.</p>`,
		},
		{
			name:     "roles ignore the filter",
			path:     "/panels/roles",
			form:     url.Values{"filterText": {"WHERE id = 1"}},
			wantCode: http.StatusOK,
			wantBody: `<ul><li>Administrator (1)<a href="#" class="dfp-details-link" rel="dfp-details-role-1">[details]</a>` +
				`<div class="dfp-details" id="dfp-details-role-1"><pre>Role
  ID: 1
  Name: Administrator</pre></div></li></ul>`,
		},
	}
	b, _ := newBrowser(t, newFake(), WithCacheSize(0))
	b.login()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := b.do(http.MethodPost, tc.path, tc.form)
			assert.Equal(t, tc.wantCode, resp.Code)
			assert.Equal(t, tc.wantBody, resp.Body.String())
		})
	}
}

func TestPanels_RemoteError(t *testing.T) {
	f := newFake()
	delete(f.replies, "CompanyService.getCompaniesByStatement")
	b, _ := newBrowser(t, f)
	b.login()

	resp := b.do(http.MethodPost, "/panels/companies", url.Values{})
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), `<p class="dfp-error">Error: soap: soap:Server: AuthenticationError.NOT_WHITELISTED_FOR_API_ACCESS`)

	resp = b.do(http.MethodPost, "/panels/companies", url.Values{"format": {"json"}})
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), `"error":"soap: soap:Server: AuthenticationError.NOT_WHITELISTED_FOR_API_ACCESS`)
}

func TestPanels_JSON(t *testing.T) {
	b, _ := newBrowser(t, newFake())
	b.login()

	resp := b.do(http.MethodPost, "/panels/companies", url.Values{"format": {"json"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.JSONEq(t, `[
		{"id":1,"name":"Acme","type":"ADVERTISER"},
		{"id":2,"name":"Tom & Jerry","type":"AGENCY"}
	]`, resp.Body.String())

	resp = b.do(http.MethodPost, "/panels/labels", url.Values{"format": {"json"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	resp = b.do(http.MethodPost, "/pql", url.Values{"format": {"json"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"Open the select statement input to run a PQL query."}`, resp.Body.String())
}

func TestPanels_Statements(t *testing.T) {
	f := newFake()
	b, _ := newBrowser(t, f, WithCacheSize(0))
	b.login()

	// 没有过滤条件的时候按页取回全部
	b.do(http.MethodPost, "/panels/companies", url.Values{})
	calls := f.callsTo("getCompaniesByStatement")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].body, "<query>LIMIT 500 OFFSET 0</query>")
	assert.Equal(t, "1234", calls[0].network)

	// 反斜杠会被去掉，只取一次
	b.do(http.MethodPost, "/panels/companies", url.Values{"filterText": {`WHERE name = \'Acme\'`}})
	calls = f.callsTo("getCompaniesByStatement")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].body, "<query>WHERE name = &#39;Acme&#39;</query>")

	b.do(http.MethodPost, "/panels/custom-targeting", url.Values{})
	calls = f.callsTo("getCustomTargetingValuesByStatement")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].body, "<query>WHERE customTargetingKeyId IN (:value1) LIMIT 500 OFFSET 0</query>")
	assert.Contains(t, calls[0].body, `<key>value1</key><value xsi:type="NumberValue"><value>10</value></value>`)

	// value 永远只取一次，不分页
	b.do(http.MethodPost, "/panels/custom-targeting", url.Values{"typeOverride": {"value"}})
	calls = f.callsTo("getCustomTargetingValuesByStatement")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].body, "<query></query>")
}

func TestSession_CacheAndNetworkSwitch(t *testing.T) {
	f := newFake()
	b, _ := newBrowser(t, f)

	// 没有登录
	resp := b.do(http.MethodPost, "/panels/companies", url.Values{})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	b.login()
	first := b.do(http.MethodPost, "/panels/companies", url.Values{})
	second := b.do(http.MethodPost, "/panels/companies", url.Values{})
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))
	require.Len(t, f.callsTo("getCompaniesByStatement"), 1)

	resp = b.do(http.MethodPost, "/network", url.Values{"network": {"5678"}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)

	b.do(http.MethodPost, "/panels/companies", url.Values{})
	calls := f.callsTo("getCompaniesByStatement")
	require.Len(t, calls, 2)
	assert.Equal(t, "5678", calls[1].network)

	resp = b.do(http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	resp = b.do(http.MethodPost, "/panels/companies", url.Values{})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name        string
		form        url.Values
		wantError   string
		wantNetwork string
	}{
		{
			name:        "first network by default",
			form:        url.Values{"token": {goodToken}},
			wantNetwork: "1234",
		},
		{
			name:        "chosen network",
			form:        url.Values{"token": {goodToken}, "network": {"5678"}},
			wantNetwork: "5678",
		},
		{
			name:        "unknown network",
			form:        url.Values{"token": {goodToken}, "network": {"9999"}},
			wantNetwork: "1234",
		},
		{
			name:      "missing token",
			form:      url.Values{},
			wantError: "Failed to authenticate: missing token",
		},
		{
			name:      "rejected token",
			form:      url.Values{"token": {"bad-token"}},
			wantError: "Failed to authenticate: soap: soap:Server: AuthenticationError.NOT_WHITELISTED_FOR_API_ACCESS @ ",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFake()
			b, _ := newBrowser(t, f)
			resp := b.do(http.MethodPost, "/login", tc.form)
			require.Equal(t, http.StatusSeeOther, resp.Code)
			loc, err := url.Parse(resp.Header().Get("Location"))
			require.NoError(t, err)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, loc.Query().Get("error"))
				assert.Empty(t, b.cookies)
				return
			}
			assert.Equal(t, "/", loc.String())

			b.do(http.MethodPost, "/panels/labels", url.Values{})
			calls := f.callsTo("getLabelsByStatement")
			require.Len(t, calls, 1)
			assert.Equal(t, tc.wantNetwork, calls[0].network)
		})
	}
}

func TestIndex(t *testing.T) {
	b, _ := newBrowser(t, newFake())

	resp := b.do(http.MethodGet, "/?error=Failed+to+authenticate", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `<form method="post" action="/login">`)
	assert.Contains(t, body, `<p class="dfp-error">Error: Failed to authenticate</p>`)
	assert.NotContains(t, body, "dfp-panel-companies")

	b.login()
	resp = b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body = resp.Body.String()
	assert.Contains(t, body, `<option value="1234" selected>Sandbox</option>`)
	assert.Contains(t, body, `<option value="5678">Staging</option>`)
	assert.Contains(t, body, `id="dfp-panel-companies"`)
	assert.Contains(t, body, `data-action="/panels/ad-units"`)
}

func TestStatic(t *testing.T) {
	b, _ := newBrowser(t, newFake())
	resp := b.do(http.MethodGet, "/static/main.css", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), ".dfp-details")

	resp = b.do(http.MethodGet, "/static/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
