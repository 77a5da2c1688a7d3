package playground

import (
	"net/http"
	"strings"

	"github.com/coderi421/adkit/web"
)

type cachedPanel struct {
	contentType string
	data        []byte
}

func (a *App) fromCache(ctx *web.Context, key string) bool {
	if a.cache == nil {
		return false
	}
	val, ok := a.cache.Get(key)
	if !ok {
		return false
	}
	p := val.(*cachedPanel)
	ctx.Resp.Header().Set("Content-Type", p.contentType)
	ctx.RespStatusCode = http.StatusOK
	ctx.RespData = p.data
	return true
}

// toCache 只缓存成功的结果
func (a *App) toCache(ctx *web.Context, key string) {
	if a.cache == nil || ctx.RespStatusCode != http.StatusOK {
		return
	}
	a.cache.Add(key, &cachedPanel{
		contentType: ctx.Resp.Header().Get("Content-Type"),
		data:        ctx.RespData,
	})
}

// purge 清理一个 session 的所有缓存
func (a *App) purge(sessID string) {
	if a.cache == nil {
		return
	}
	prefix := sessID + keySep
	for _, k := range a.cache.Keys() {
		if key, ok := k.(string); ok && strings.HasPrefix(key, prefix) {
			a.cache.Remove(k)
		}
	}
}
