package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// qrSize 手机扫码友好的尺寸
const qrSize = 320

// controllerPath 手机控制器页面（位于 web 目录）
const controllerPath = "/controller.html"

// API HTTP 入口：WebSocket、房间、二维码、管理与监控
type API struct {
	rooms *RoomManager
	cfg   Config
	log   *zap.SugaredLogger
}

func NewAPI(rooms *RoomManager, cfg Config, log *zap.SugaredLogger) *API {
	return &API{rooms: rooms, cfg: cfg, log: log}
}

// Router 注册全部路由；未匹配的路径交给 web 目录的静态资源
func (a *API) Router() http.Handler {
	mux := httprouter.New()
	mux.GET("/ws", a.HandleWS)
	mux.POST("/rooms", a.HandleCreateRoom)
	mux.GET("/rooms/:code", a.HandleRoomInfo)
	mux.GET("/rooms/:code/qr", a.HandleQR)
	mux.GET("/metrics", a.HandleMetrics)
	mux.GET("/admin/config", a.HandleAdminConfig)
	mux.POST("/admin/config", a.HandleAdminConfig)
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	if a.cfg.WebDir != "" {
		mux.NotFound = http.FileServer(http.Dir(a.cfg.WebDir))
	}
	return mux
}

// HandleCreateRoom POST /rooms：主屏也可以先建房再带 room 参数接入
func (a *API) HandleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	room := a.rooms.CreateRoom()
	writeJSON(w, http.StatusCreated, map[string]string{
		"roomCode": room.Code,
		"joinUrl":  a.joinURL(r, room.Code),
	})
}

// HandleRoomInfo GET /rooms/:code
func (a *API) HandleRoomInfo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := a.rooms.Get(strings.ToUpper(ps.ByName("code")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s, err := room.Summary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleQR 生成手机加入链接的二维码（PNG）
func (a *API) HandleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := strings.ToUpper(ps.ByName("code"))
	if _, err := a.rooms.Get(code); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	png, err := qrcode.Encode(a.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// joinURL 优先使用配置的对外地址，否则按请求推断（兼容反向代理）
func (a *API) joinURL(r *http.Request, code string) string {
	base := strings.TrimSuffix(a.cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + controllerPath + "?room=" + url.QueryEscape(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
