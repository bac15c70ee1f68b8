// Simon Says, served to the browser
//
// Every game ID gets its own hub goroutine, which owns one simon.Controller.
// The browser is a thin view: it sends "start" and "press" commands and
// renders whatever the controller presents.
//
// Features:
// - WebSockets per game ID: /simon/:gameid and /simon/:gameid/ws
// - First cookie to connect holds the pads; everyone else spectates
// - Spectators are caught up with a snapshot on connect (never the sequence)
// - Pads pass to a spectator if the player stays away past --player-timeout
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/simonsays/games/simon"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id  string
	cfg *Config
	log zerolog.Logger

	register chan *Client
	unreg    chan *Client
	commands chan command
	timers   chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	clients    map[*Client]bool
	createdAt  time.Time
	lastActive time.Time

	// Owned by the run loop.
	playerID  string // cookie allowed to press pads
	game      *simon.Controller
	presenter *webPresenter
}

func newHub(cfg *Config, gameID string) *Hub {
	now := time.Now()
	h := &Hub{
		id:         gameID,
		cfg:        cfg,
		log:        cfg.log.With().Str("component", "GAMES").Str("game", gameID).Logger(),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		timers:     make(chan func()),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		createdAt:  now,
		lastActive: now,
	}

	h.presenter = newWebPresenter(h.broadcast)
	h.game = simon.NewController(h.presenter, h, simon.Options{
		Timing:       cfg.timing(),
		Randomizer:   simon.NewRandomizer(cfg.seed),
		OnTransition: h.logTransition,
	})
	h.presenter.outcome = h.game.Outcome

	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.handleUnregister(c)

		case cmd := <-h.commands:
			h.handleCommand(cmd)

		case fn := <-h.timers:
			fn()

		case <-h.done:
			h.game.Abort()
			return
		}
	}
}

// After implements simon.Scheduler. Callbacks are delivered through the run
// loop, never on the timer goroutine.
func (h *Hub) After(d time.Duration, fn func()) simon.Cancel {
	t := time.AfterFunc(d, func() {
		select {
		case h.timers <- fn:
		case <-h.done:
		}
	})

	return func() { t.Stop() }
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.clients[c] = true
	h.mu.Unlock()

	// First connection holds the pads
	if h.playerID == "" {
		h.playerID = c.playerID
		h.log.Info().Str("player", c.playerID).Msg("player joined")
	} else if c.playerID != h.playerID {
		h.log.Info().Str("player", c.playerID).Msg("spectator joined")
	}

	h.sendTo(c, h.sessionInfo(c))
	h.sendTo(c, h.presenter.snapshot(h.game.Snapshot()))
}

func (h *Hub) handleUnregister(c *Client) {
	h.mu.Lock()
	h.lastActive = time.Now()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if c.playerID == h.playerID && !h.connected(c.playerID) {
		playerID := c.playerID
		h.After(h.cfg.playerTimeout, func() { h.handOff(playerID) })
	}
}

// handOff passes the pads to a connected spectator if the player has not come
// back. A game in progress is abandoned.
func (h *Hub) handOff(from string) {
	if h.playerID != from || h.connected(from) {
		return
	}

	h.game.Abort()

	next := ""
	h.mu.RLock()
	for c := range h.clients {
		next = c.playerID
		break
	}
	h.mu.RUnlock()

	h.playerID = next
	if next == "" {
		h.log.Info().Str("player", from).Msg("player left, no one to hand off to")
		return
	}

	h.log.Info().Str("from", from).Str("to", next).Msg("handed off pads")

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.sendTo(c, h.sessionInfo(c))
	}
}

func (h *Hub) handleCommand(cmd command) {
	h.touch()

	c := cmd.client
	if c.playerID != h.playerID {
		h.log.Debug().Str("player", c.playerID).Str("type", cmd.msg.Type).Msg("ignored command from spectator")
		return
	}

	switch cmd.msg.Type {
	case "start":
		if err := h.game.Start(cmd.msg.Level); err != nil {
			h.log.Debug().Err(err).Msg("rejected start")
			h.sendTo(c, ErrorMessage{
				Type:    "error",
				Message: err.Error(),
			})
			return
		}
		h.log.Info().Int("level", cmd.msg.Level).Msg("game started")

	case "press":
		if _, ok := simon.ParsePad(cmd.msg.Pad); !ok {
			h.log.Debug().Str("pad", cmd.msg.Pad).Msg("ignored unknown pad")
			return
		}
		h.game.PressName(cmd.msg.Pad)
	}
}

func (h *Hub) logTransition(from, to simon.State) {
	switch to {
	case simon.GameWon, simon.GameLost:
		h.log.Info().
			Str("result", to.String()).
			Int("round", h.game.Snapshot().Round).
			Msg("game over")
	default:
		h.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("transition")
	}
}

func (h *Hub) sessionInfo(c *Client) SessionInfoMessage {
	return SessionInfoMessage{
		Type:     "session_info",
		GameID:   h.id,
		IsPlayer: c.playerID == h.playerID,
		Levels:   simon.LevelNumbers(),
		Level:    h.cfg.level,
	}
}

func (h *Hub) connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.playerID == playerID {
			return true
		}
	}
	return false
}

// broadcast sends msg to every client, dropping any whose buffer is full.
func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) sendTo(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// closeAll disconnects all clients of this hub and stops its loop (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
	h.mu.Unlock()

	h.stopOnce.Do(func() { close(h.done) })
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "simonsays_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
}

func newGameManager(idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
	}

	if idleTimeout > 0 {
		go gm.reaperLoop()
	}

	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(cfg, gameID)
	gm.hubs[gameID] = hub
	go hub.run()

	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	const max = byte(255 - (256 % len(letters)))

	for {
		out := make([]byte, 0, 8)
		buf := make([]byte, 16)

		for len(out) < cap(out) {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}

			for _, b := range buf {
				if b <= max && len(out) < cap(out) {
					out = append(out, letters[int(b)%len(letters)])
				}
			}
		}

		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		gm.reap(time.Now().Add(-gm.idleTimeout))
	}
}

func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			hub.log.Info().Msg("reaped idle game")
			delete(gm.hubs, id)
			go hub.closeAll()
		}
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Warn().Str("component", "GAMES").Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 32),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "start", "press":
			select {
			case h.commands <- command{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/simon/index.html")
		if err != nil {
			http.Error(w, "missing client", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write([]byte(strings.ReplaceAll(string(data), "{{prefix}}", cfg.prefix)))
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		cfg.log.Info().Str("component", "GAMES").Str("game", gameID).Msg("created game")
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerSimonGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerSimonGame(cfg *Config, path string, mux *httprouter.Router) *GameManager {
	gm := newGameManager(cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))

	return gm
}
