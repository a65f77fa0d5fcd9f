package services

import (
	"log"
	"sync"
)

// Event 推送给客户端的事件
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// 事件类型
const (
	EventUsers         = "users"          // 广播：在线列表/状态变化
	EventMessage       = "message"        // 私发：新消息
	EventLatestMessage = "latest-message" // 私发：会话最新消息更新
	EventSignal        = "signal"         // 私发：信令透传
	EventUserDeleted   = "user-deleted"   // 广播：账号删除
	EventError         = "error"          // 私发：帧处理错误
)

// WSManager 管理全部在线连接，按用户ID分组。
// 同一用户可以同时打开多条连接，只有最后一条关闭时才算下线。
type WSManager struct {
	mu       sync.RWMutex
	sessions map[uint][]*Session
}

// 全局连接管理器实例
var Manager = NewWSManager()

func NewWSManager() *WSManager {
	return &WSManager{
		sessions: make(map[uint][]*Session),
	}
}

// Register 注册新连接，用户首条连接触发上线
func (m *WSManager) Register(s *Session) {
	m.mu.Lock()
	m.sessions[s.UserID] = append(m.sessions[s.UserID], s)
	first := len(m.sessions[s.UserID]) == 1
	m.mu.Unlock()

	log.Printf("Client connected: user=%d conn=%s", s.UserID, s.ID)
	if first {
		HandleConnect(s.UserID)
	}
}

// Unregister 注销连接，用户最后一条连接关闭时触发下线
func (m *WSManager) Unregister(s *Session) {
	m.mu.Lock()
	sessions := m.sessions[s.UserID]
	for i, c := range sessions {
		if c == s {
			m.sessions[s.UserID] = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}
	last := len(m.sessions[s.UserID]) == 0
	if last {
		delete(m.sessions, s.UserID)
	}
	m.mu.Unlock()

	s.shutdown()
	log.Printf("Client disconnected: user=%d conn=%s", s.UserID, s.ID)
	if last {
		HandleDisconnect(s.UserID)
	}
}

// SessionCount 返回用户当前的连接数
func (m *WSManager) SessionCount(userID uint) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[userID])
}

// Broadcast 向全部连接广播事件，投递失败直接丢弃
func (m *WSManager) Broadcast(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sessions := range m.sessions {
		for _, s := range sessions {
			s.push(ev)
		}
	}
}

// SendToUser 向某个用户的全部连接投递事件。
// 投递是尽力而为：用户不在线或通道已满都不算错误，消息在推送前已落库。
func (m *WSManager) SendToUser(userID uint, ev Event) {
	m.mu.RLock()
	sessions := m.sessions[userID]
	m.mu.RUnlock()

	for _, s := range sessions {
		s.push(ev)
	}
}
