package web

import (
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
)

type StaticResourceHandlerOption func(*StaticResourceHandler)

// StaticResourceHandler serves files from fsys under the route parameter
// "file", e.g. registered as /static/:file.
//
// 缓存两个层面上受控：大文件不缓存，缓存文件的数量有上限。
// 所以最多消耗 maxFileSize * 缓存数量 的内存
type StaticResourceHandler struct {
	fsys                    fs.FS
	extensionContentTypeMap map[string]string

	cache       *lru.Cache
	maxFileSize int
}

type fileCacheItem struct {
	fileName    string
	fileSize    int
	contentType string
	data        []byte
}

func NewStaticResourceHandler(fsys fs.FS, opts ...StaticResourceHandlerOption) *StaticResourceHandler {
	res := &StaticResourceHandler{
		fsys: fsys,
		extensionContentTypeMap: map[string]string{
			"css":  "text/css; charset=utf-8",
			"js":   "text/javascript; charset=utf-8",
			"html": "text/html; charset=utf-8",
			"png":  "image/png",
			"svg":  "image/svg+xml",
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// WithFileCache 超过 maxFileSizeThreshold 的文件不会被缓存，最多缓存 maxCacheFileCnt 个文件
func WithFileCache(maxFileSizeThreshold int, maxCacheFileCnt int) StaticResourceHandlerOption {
	return func(h *StaticResourceHandler) {
		c, err := lru.New(maxCacheFileCnt)
		if err != nil {
			// size <= 0，不缓存
			return
		}
		h.maxFileSize = maxFileSizeThreshold
		h.cache = c
	}
}

func WithMoreExtension(extMap map[string]string) StaticResourceHandlerOption {
	return func(h *StaticResourceHandler) {
		for ext, contentType := range extMap {
			h.extensionContentTypeMap[ext] = contentType
		}
	}
}

func (h *StaticResourceHandler) Handle(ctx *Context) {
	name, err := ctx.PathValue("file").String()
	if err != nil {
		ctx.RespString(http.StatusBadRequest, "missing file name")
		return
	}
	// fs.FS 只接受 clean 的相对路径，../ 之类的会被拒绝
	name = path.Clean(name)
	if item, ok := h.readFileFromCache(name); ok {
		h.writeItemAsResponse(item, ctx)
		return
	}

	ext := path.Ext(name)
	t, ok := h.extensionContentTypeMap[trimDot(ext)]
	if !ok {
		t = mime.TypeByExtension(ext)
	}
	if t == "" {
		ctx.RespString(http.StatusBadRequest, "unsupported file type")
		return
	}

	f, err := h.fsys.Open(name)
	if err != nil {
		ctx.RespString(http.StatusNotFound, "Not Found")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		ctx.RespString(http.StatusInternalServerError, "read failed")
		return
	}

	item := &fileCacheItem{
		fileName:    name,
		fileSize:    len(data),
		contentType: t,
		data:        data,
	}
	h.cacheFile(item)
	h.writeItemAsResponse(item, ctx)
}

func (h *StaticResourceHandler) cacheFile(item *fileCacheItem) {
	if h.cache != nil && item.fileSize < h.maxFileSize {
		h.cache.Add(item.fileName, item)
	}
}

// writeItemAsResponse 走 RespData，这样 middleware 还能看到响应
func (h *StaticResourceHandler) writeItemAsResponse(item *fileCacheItem, ctx *Context) {
	header := ctx.Resp.Header()
	header.Set("Content-Type", item.contentType)
	header.Set("Content-Length", strconv.Itoa(item.fileSize))
	ctx.RespStatusCode = http.StatusOK
	ctx.RespData = item.data
}

func (h *StaticResourceHandler) readFileFromCache(name string) (*fileCacheItem, bool) {
	if h.cache != nil {
		if item, ok := h.cache.Get(name); ok {
			return item.(*fileCacheItem), true
		}
	}
	return nil, false
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
