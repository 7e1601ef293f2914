package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	ActionRegister = "register"
	ActionConfirm  = "confirm"
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionReport   = "report"

	typeResult = "result"
	typeEvent  = "event"

	closeGrace = time.Second
)

// SessionManager tracks open WebSocket connections. Each connection owns
// exactly one domain.Session, which is dropped when the connection ends.
type SessionManager struct {
	mutex   sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *zap.Logger
}

func NewSessionManager(logger *zap.Logger) *SessionManager {
	return &SessionManager{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (m *SessionManager) add(conn *websocket.Conn) {
	m.mutex.Lock()
	m.clients[conn] = struct{}{}
	total := len(m.clients)
	m.mutex.Unlock()
	m.logger.Info("websocket session opened", zap.Int("total", total))
}

func (m *SessionManager) remove(conn *websocket.Conn) {
	m.mutex.Lock()
	_, ok := m.clients[conn]
	delete(m.clients, conn)
	total := len(m.clients)
	m.mutex.Unlock()
	if ok {
		conn.Close()
		m.logger.Info("websocket session closed", zap.Int("total", total))
	}
}

func (m *SessionManager) Count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.clients)
}

// CloseAll sends a going-away frame to every client and closes it.
func (m *SessionManager) CloseAll() {
	m.mutex.Lock()
	clients := m.clients
	m.clients = make(map[*websocket.Conn]struct{})
	m.mutex.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range clients {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		conn.Close()
	}
	if len(clients) > 0 {
		m.logger.Info("closed websocket sessions", zap.Int("count", len(clients)))
	}
}

type wsRequest struct {
	ID          string `json:"id,omitempty"`
	Action      string `json:"action"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	Username    string `json:"username,omitempty"`
	Code        string `json:"code,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type wsResponse struct {
	ID      string                `json:"id,omitempty"`
	Action  string                `json:"action"`
	Type    string                `json:"type"`
	OK      bool                  `json:"ok"`
	Message string                `json:"message,omitempty"`
	Session *domain.Session       `json:"session,omitempty"`
	Event   *domain.ReportEvent   `json:"event,omitempty"`
	Outcome *domain.ReportOutcome `json:"outcome,omitempty"`
}

type WebSocketHandler struct {
	authService    *service.AuthService
	reportService  *service.ReportService
	sessions       *SessionManager
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewWebSocketHandler(as *service.AuthService, rs *service.ReportService, sessions *SessionManager, maxUploadBytes int64, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService:    as,
		reportService:  rs,
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// GET /ws/session
//
// Requests on one connection are handled strictly in order; a report
// streams its stage events before the final result frame.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	// base64 inflates the image by a third, plus room for the envelope
	conn.SetReadLimit(h.maxUploadBytes/3*4 + 64<<10)

	h.sessions.add(conn)
	defer h.sessions.remove(conn)

	session := domain.NewSession()
	ctx := c.Request.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if jsonErr := json.Unmarshal(payload, &req); jsonErr != nil {
			err = conn.WriteJSON(wsResponse{Type: typeResult, Message: "Malformed request."})
		} else {
			err = h.dispatch(ctx, conn, session, req)
		}
		if err != nil {
			h.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, conn *websocket.Conn, session *domain.Session, req wsRequest) error {
	res := wsResponse{ID: req.ID, Action: req.Action, Type: typeResult}

	switch req.Action {
	case ActionRegister:
		if req.Email == "" || req.Password == "" || req.Username == "" {
			res.Message = "Please fill in all fields."
			break
		}
		msg, err := h.authService.Register(ctx, domain.RegisterUserDTO{Email: req.Email, Password: req.Password, Username: req.Username})
		if err != nil {
			_, res.Message = registerFailure(msg, err)
			break
		}
		res.OK, res.Message = true, msg

	case ActionConfirm:
		msg, err := h.authService.Confirm(ctx, domain.ConfirmUserDTO{Email: req.Email, Code: req.Code})
		if err != nil {
			res.Message = confirmFailure(err)
			break
		}
		res.OK, res.Message = true, msg

	case ActionLogin:
		auth, err := h.authService.Login(ctx, domain.LoginUserDTO{Email: req.Email, Password: req.Password})
		if err != nil {
			res.Message = loginFailure(err)
			break
		}
		session.SignIn(auth.Username, auth.Email)
		res.OK, res.Message, res.Session = true, "Welcome, "+auth.Username, session

	case ActionLogout:
		session.SignOut()
		res.OK, res.Message, res.Session = true, "Logged out.", session

	case ActionReport:
		return h.report(ctx, conn, session, req, res)

	default:
		res.Message = "Unknown action: " + req.Action
	}
	return conn.WriteJSON(res)
}

func (h *WebSocketHandler) report(ctx context.Context, conn *websocket.Conn, session *domain.Session, req wsRequest, res wsResponse) error {
	if !session.Authenticated {
		res.Message = "Please log in first."
		return conn.WriteJSON(res)
	}
	image, err := decodeBase64Image(req.ImageBase64, h.maxUploadBytes)
	if err != nil {
		res.Message = err.Error()
		return conn.WriteJSON(res)
	}

	var writeErr error
	emit := func(ev domain.ReportEvent) {
		if writeErr != nil {
			return
		}
		writeErr = conn.WriteJSON(wsResponse{ID: req.ID, Action: req.Action, Type: typeEvent, OK: ev.Level != domain.LevelError, Event: &ev})
	}

	outcome, err := h.reportService.Report(ctx, session, image, emit)
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			res.Message = "Please log in first."
		} else {
			res.Message = "Report failed: " + err.Error()
		}
		return conn.WriteJSON(res)
	}
	res.OK, res.Message, res.Outcome = true, "Report completed.", outcome
	return conn.WriteJSON(res)
}
