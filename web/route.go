package web

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// router keeps one tree per HTTP method.
type router struct {
	trees map[string]*node
}

func newRouter() router {
	return router{
		trees: map[string]*node{},
	}
}

// addRoute 注册路由
//   - 同一个路由不能注册两次
//   - path 必须以 / 开头，不能以 / 结尾，不能有连续的 /
//   - 同一个位置只能有一种非静态路由：正则 :id(\d+)、参数 :id 或者通配符 *
//   - ms 只作用于这个路由以及它下面的路由
func (r *router) addRoute(method string, path string, handleFunc HandleFunc, ms ...Middleware) {
	if strings.TrimSpace(path) == "" {
		panic("web: empty route")
	}
	if path[0] != '/' {
		panic("web: route must start with /")
	}
	if path != "/" && path[len(path)-1] == '/' {
		panic("web: route must not end with /")
	}

	root, ok := r.trees[method]
	if !ok {
		root = &node{path: "/"}
		r.trees[method] = root
	}

	cur := root
	if path != "/" {
		for _, seg := range strings.Split(path[1:], "/") {
			if seg == "" {
				panic(fmt.Sprintf("web: route contains an empty segment [%s]", path))
			}
			cur = cur.childOrCreate(seg)
		}
	}
	if cur.handler != nil {
		panic(fmt.Sprintf("web: route registered twice [%s]", path))
	}
	cur.handler = handleFunc
	cur.route = path
	cur.mdls = append(cur.mdls, ms...)
}

func (r *router) findRoute(method string, path string) (*matchInfo, bool) {
	root, ok := r.trees[method]
	if !ok {
		return nil, false
	}
	if path == "/" {
		return &matchInfo{n: root, mdls: root.mdls}, true
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	mi := &matchInfo{}
	cur := root
	for _, seg := range segs {
		child, found := cur.childOf(seg)
		if !found {
			// 通配符吃掉剩下的所有段，/a/b/* 可以命中 /a/b/c/d
			if cur.typ == nodeTypeAny {
				break
			}
			return nil, false
		}
		if child.paramName != "" {
			mi.addValue(child.paramName, seg)
		}
		cur = child
	}
	mi.n = cur
	mi.mdls = r.findMdls(root, segs)
	return mi, true
}

// allowed lists the methods that have a handler for path. It is used to
// answer 405 instead of 404.
func (r *router) allowed(path string) []string {
	var res []string
	for method := range r.trees {
		if mi, ok := r.findRoute(method, path); ok && mi.n.handler != nil {
			res = append(res, method)
		}
	}
	sort.Strings(res)
	return res
}

// findMdls 按层收集所有可能命中的节点上的 middleware，
// 短的路由先执行，同一层里面通配符 > 参数 > 正则 > 静态
func (r *router) findMdls(root *node, segs []string) []Middleware {
	queue := []*node{root}
	res := make([]Middleware, 0, 16)
	for _, seg := range segs {
		var next []*node
		for _, cur := range queue {
			res = append(res, cur.mdls...)
			next = append(next, cur.childrenOf(seg)...)
		}
		queue = next
	}
	for _, cur := range queue {
		res = append(res, cur.mdls...)
	}
	return res
}

type nodeType int

const (
	nodeTypeStatic nodeType = iota
	// :id(\d+)
	nodeTypeReg
	// :id
	nodeTypeParam
	// *
	nodeTypeAny
)

// node 匹配顺序：静态 > 正则 > 参数 > 通配符，不回溯
type node struct {
	typ  nodeType
	path string

	children map[string]*node
	handler  HandleFunc
	mdls     []Middleware
	// route 完整的路由，只有注册了 handler 的节点才有
	route string

	starChild  *node
	paramChild *node
	regChild   *node

	// 正则路由和参数路由都会使用
	paramName string
	regExpr   *regexp.Regexp
}

func (n *node) childOf(seg string) (*node, bool) {
	if child, ok := n.children[seg]; ok {
		return child, true
	}
	if n.regChild != nil && n.regChild.regExpr.MatchString(seg) {
		return n.regChild, true
	}
	if n.paramChild != nil {
		return n.paramChild, true
	}
	return n.starChild, n.starChild != nil
}

// childrenOf returns every child that could match seg.
func (n *node) childrenOf(seg string) []*node {
	res := make([]*node, 0, 2)
	if n.starChild != nil {
		res = append(res, n.starChild)
	}
	if n.paramChild != nil {
		res = append(res, n.paramChild)
	}
	if n.regChild != nil && n.regChild.regExpr.MatchString(seg) {
		res = append(res, n.regChild)
	}
	if static, ok := n.children[seg]; ok {
		res = append(res, static)
	}
	return res
}

func (n *node) childOrCreate(seg string) *node {
	if seg == "*" {
		if n.paramChild != nil || n.regChild != nil {
			panic(fmt.Sprintf("web: [%s] conflicts with an existing parameter route", seg))
		}
		if n.starChild == nil {
			n.starChild = &node{path: seg, typ: nodeTypeAny}
		}
		return n.starChild
	}

	if seg[0] == ':' {
		name, expr, isReg := parseParam(seg)
		if isReg {
			return n.childOrCreateReg(seg, name, expr)
		}
		return n.childOrCreateParam(seg, name)
	}

	if n.children == nil {
		n.children = map[string]*node{}
	}
	child, ok := n.children[seg]
	if !ok {
		child = &node{path: seg, typ: nodeTypeStatic}
		n.children[seg] = child
	}
	return child
}

func (n *node) childOrCreateReg(seg string, name string, expr string) *node {
	if n.starChild != nil || n.paramChild != nil {
		panic(fmt.Sprintf("web: [%s] conflicts with an existing wildcard or parameter route", seg))
	}
	if n.regChild != nil {
		if n.regChild.path != seg {
			panic(fmt.Sprintf("web: regexp route conflict, have %s, got %s", n.regChild.path, seg))
		}
		return n.regChild
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		panic(fmt.Errorf("web: invalid route regexp %w", err))
	}
	n.regChild = &node{path: seg, paramName: name, regExpr: re, typ: nodeTypeReg}
	return n.regChild
}

func (n *node) childOrCreateParam(seg string, name string) *node {
	if n.starChild != nil || n.regChild != nil {
		panic(fmt.Sprintf("web: [%s] conflicts with an existing wildcard or regexp route", seg))
	}
	if n.paramChild != nil {
		if n.paramChild.path != seg {
			panic(fmt.Sprintf("web: parameter route conflict, have %s, got %s", n.paramChild.path, seg))
		}
		return n.paramChild
	}
	n.paramChild = &node{path: seg, paramName: name, typ: nodeTypeParam}
	return n.paramChild
}

// parseParam 解析 :name 或者 :name(expr)
func parseParam(seg string) (name string, expr string, isReg bool) {
	seg = seg[1:]
	parts := strings.SplitN(seg, "(", 2)
	if len(parts) == 2 && strings.HasSuffix(parts[1], ")") {
		return parts[0], parts[1][:len(parts[1])-1], true
	}
	return seg, "", false
}

type matchInfo struct {
	n          *node
	pathParams map[string]string
	mdls       []Middleware
}

func (m *matchInfo) addValue(key, value string) {
	if m.pathParams == nil {
		m.pathParams = map[string]string{}
	}
	m.pathParams[key] = value
}
