package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	pingInterval = 25 * time.Second // 心跳间隔
	pongTimeout  = 60 * time.Second // 超时未收到 Pong 断开
	writeTimeout = 10 * time.Second

	// CloseSessionExpired 凭证过期的关闭码，区别于普通断开，
	// 客户端据此区分"退出登录"和"令牌过期"
	CloseSessionExpired = 4401
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Session 一条已认证的推送连接，绑定单个用户和一份带过期时间的凭证
type Session struct {
	ID        string // 连接ID
	UserID    uint
	conn      *websocket.Conn
	send      chan Event
	done      chan struct{}
	expiresAt time.Time

	mu        sync.Mutex
	closed    bool // 与 send 的关闭在同一把锁下联动，推送前必须检查
	closeOnce sync.Once
}

// Frame 客户端帧
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleWebSocket 升级连接并主持整个会话生命周期
func HandleWebSocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	// 第一帧必须携带凭证，验证失败直接拒绝本次连接
	session, err := authenticate(conn)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout))
		conn.Close()
		return
	}

	Manager.Register(session)
	go session.writeLoop()
	go session.keepAlive()
	session.readLoop()
}

// authenticate 读取并验证首帧凭证，成功则构建会话
func authenticate(conn *websocket.Conn) (*Session, error) {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, "no auth frame received")
	}

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != "auth" {
		return nil, errors.Wrap(ErrUnauthorized, "first frame must be an auth frame")
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.Token == "" {
		return nil, errors.Wrap(ErrUnauthorized, "missing bearer token")
	}

	claims, err := ParseToken(payload.Token)
	if err != nil {
		return nil, err
	}
	user, err := FindUserByID(claims.UserID)
	if err != nil {
		return nil, errors.Wrapf(ErrUnauthorized, "token subject not resolvable: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	return &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		conn:      conn,
		send:      make(chan Event, 64),
		done:      make(chan struct{}),
		expiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Session) readLoop() {
	defer func() {
		Manager.Unregister(s)
		s.conn.Close()
	}()

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Invalid frame from user %d: %s", s.UserID, string(raw))
			continue
		}

		if err := s.dispatch(frame); err != nil {
			if errors.Is(err, ErrSessionExpired) {
				// 过期会话不再处理任何帧
				closeMsg := websocket.FormatCloseMessage(CloseSessionExpired, "session expired")
				_ = s.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout))
				return
			}
			s.push(Event{Type: EventError, Data: map[string]string{
				"frame":   frame.Type,
				"message": err.Error(),
			}})
		}
	}
}

// dispatch 处理一条已认证帧，进入业务逻辑前先检查凭证有效期
func (s *Session) dispatch(frame Frame) error {
	if time.Now().After(s.expiry()) {
		return ErrSessionExpired
	}

	switch frame.Type {
	case "message.send":
		var payload struct {
			RecipientID uint   `json:"recipient_id"`
			Content     string `json:"content"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Wrap(ErrInvalidInput, "malformed message.send frame")
		}
		msg, err := SaveMessage(s.UserID, payload.RecipientID, payload.Content)
		if err != nil {
			return err
		}
		// 消息已落库，推送失败对发送方不可见
		Manager.SendToUser(msg.RecipientID, Event{Type: EventMessage, Data: msg})
		latest := Event{Type: EventLatestMessage, Data: msg}
		Manager.SendToUser(msg.RecipientID, latest)
		Manager.SendToUser(msg.SenderID, latest)

	case "chat.read":
		var payload struct {
			UserID uint `json:"user_id"` // 对方用户ID
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Wrap(ErrInvalidInput, "malformed chat.read frame")
		}
		preview, err := MarkLatestRead(s.UserID, payload.UserID)
		if err != nil {
			return err
		}
		Manager.SendToUser(s.UserID, Event{Type: EventLatestMessage, Data: preview})

	case "token.refresh":
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Wrap(ErrInvalidInput, "malformed token.refresh frame")
		}
		claims, err := ParseToken(payload.Token)
		if err != nil {
			return err
		}
		// 新凭证必须属于当前绑定的用户
		if claims.UserID != s.UserID {
			return errors.Wrap(ErrUnauthorized, "token subject mismatch")
		}
		s.setExpiry(claims.ExpiresAt.Time)

	case "signal":
		// 信令纯透传，服务端不关心内容
		var payload struct {
			RecipientID uint `json:"recipient_id"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Wrap(ErrInvalidInput, "malformed signal frame")
		}
		if _, err := FindUserByID(payload.RecipientID); err != nil {
			return err
		}
		Manager.SendToUser(payload.RecipientID, Event{Type: EventSignal, Data: frame.Data})

	default:
		return errors.Wrapf(ErrInvalidInput, "unknown frame type %q", frame.Type)
	}
	return nil
}

func (s *Session) writeLoop() {
	for ev := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (s *Session) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			if err != nil {
				return
			}
		}
	}
}

// push 非阻塞投递，慢客户端直接丢弃。
// 会话关闭后的投递是空操作：注销和推送可以并发到达
func (s *Session) push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- ev:
	default:
		log.Printf("Dropping event %q for user %d: send buffer full", ev.Type, s.UserID)
	}
}

func (s *Session) expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) setExpiry(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = t
}

// shutdown 终止会话的投递通道，closed 标记和 send 的关闭必须在同一把锁内完成
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.send)
		s.mu.Unlock()
		close(s.done)
	})
}
