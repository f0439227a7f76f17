package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/middleware"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

const (
	chatRedisTTL       = 24 * time.Hour
	chatSendBufferSize = 32

	// AssistantChatID identifies the built-in assistant conversation in chat listings.
	AssistantChatID = "hikemate"
)

var (
	// ErrChatNotMember indicates the caller is not a member of the chat.
	ErrChatNotMember = errors.New("not a member of this chat")
	// ErrChatNotFound indicates the chat does not exist.
	ErrChatNotFound = errors.New("chat not found")
)

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID        string
	DisplayName   string
	RoomID        string
	CorrelationID string
	Context       context.Context
}

// ChatService manages event group chats over websockets and HTTP.
type ChatService interface {
	Authorize(ctx context.Context, session Session, chatID string) error
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	Send(ctx context.Context, session Session, chatID string, req dto.ChatSendRequest) (dto.ChatMessageResponse, error)
	History(ctx context.Context, session Session, query dto.ChatHistoryQuery) ([]dto.ChatMessageResponse, error)
	ListChats(ctx context.Context, session Session) ([]dto.ChatSummaryResponse, error)
	Start(ctx context.Context)
}

type chatService struct {
	repo        repository.ChatRepository
	redis       *redis.Client
	redisStream string
	redisCache  string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *chatHub
	nodeID      string
}

// chatHub keeps track of active websocket clients per chat.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*chatClient]struct{}
	log   zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan dto.ChatMessageResponse
	options ChatConnectionOptions
	service *chatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type chatEvent struct {
	Source  string                  `json:"source"`
	Message dto.ChatMessageResponse `json:"message"`
	SentAt  time.Time               `json:"sent_at"`
}

// NewChatService creates the group chat service. Redis and NATS are optional relays
// between nodes; Redis also keeps the last message of each chat.
func NewChatService(repo repository.ChatRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) ChatService {
	hub := &chatHub{
		rooms: make(map[string]map[*chatClient]struct{}),
		log:   logger.With().Str("component", "chat_hub").Logger(),
	}

	streamChannel := ""
	cachePrefix := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":chat"
		cachePrefix = channelBase + ":chat:last"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &chatService{
		repo:        repo,
		redis:       redisClient,
		redisStream: streamChannel,
		redisCache:  cachePrefix,
		nats:        natsConn,
		natsSubject: natsSubject,
		validator:   validate,
		logger:      logger.With().Str("component", "chat_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/chat"),
		sanitizer:   bluemonday.StrictPolicy(),
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *chatService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Authorize checks that the chat exists and the caller belongs to it.
func (s *chatService) Authorize(ctx context.Context, session Session, chatID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if _, err := uuid.Parse(chatID); err != nil {
		return fmt.Errorf("%w: chat id", ErrInvalidInput)
	}
	if _, err := s.repo.FindChat(ctx, chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	member, err := s.repo.IsMember(ctx, chatID, session.UserID)
	if err != nil {
		return err
	}
	if !member {
		return ErrChatNotMember
	}
	return nil
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan dto.ChatMessageResponse, chatSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatConnections().Inc()

	if last := s.lastMessage(baseCtx, opts.RoomID); last != nil {
		select {
		case client.send <- *last:
		default:
		}
	}

	go client.writer()
	client.reader()
}

func (s *chatService) Send(ctx context.Context, session Session, chatID string, req dto.ChatSendRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChatMessageResponse{}, err
	}
	// Membership is checked per message: leaving an event revokes access to an open socket too.
	if err := s.Authorize(ctx, session, chatID); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if clean == "" {
		return dto.ChatMessageResponse{}, ErrEmptyContent
	}
	messageType := req.Type
	if messageType == "" {
		messageType = "text"
	}

	attrs := []attribute.KeyValue{
		attribute.String("chat.room_id", chatID),
		attribute.String("chat.sender_id", session.UserID),
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}
	spanCtx, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.ChatMessage{
		RoomID:     chatID,
		SenderID:   session.UserID,
		SenderName: session.DisplayName,
		Content:    clean,
		Type:       messageType,
	}
	if err := s.repo.Save(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.ChatMessageResponse{}, err
	}

	response := dto.NewChatMessageResponse(model)
	s.cacheLastMessage(spanCtx, response)
	s.hub.broadcast(chatID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to relay chat message")
	}
	observability.ChatMessages().WithLabelValues("local").Inc()

	return response, nil
}

func (s *chatService) History(ctx context.Context, session Session, query dto.ChatHistoryQuery) ([]dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, session, query.RoomID); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.repo.ListByRoom(ctx, query.RoomID, before, query.Limit)
	if err != nil {
		return nil, err
	}
	return dto.NewChatMessageResponseSlice(messages), nil
}

// ListChats returns the assistant entry followed by the caller's event chats.
func (s *chatService) ListChats(ctx context.Context, session Session) ([]dto.ChatSummaryResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	chats, err := s.repo.ListChatsForUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatSummaryResponse, 0, len(chats)+1)
	out = append(out, dto.ChatSummaryResponse{ID: AssistantChatID, Title: "HikeMate", Kind: "assistant"})
	for _, chat := range chats {
		members, err := s.repo.Members(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		summary := dto.ChatSummaryResponse{
			ID:           chat.ID,
			EventID:      chat.EventID,
			Title:        chat.Title,
			Kind:         "event",
			Participants: members,
			LastMessage:  s.lastMessage(ctx, chat.ID),
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *chatService) cacheLastMessage(ctx context.Context, message dto.ChatMessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	key := fmt.Sprintf("%s:%s", s.redisCache, message.RoomID)
	if err := s.redis.Set(ctx, key, payload, chatRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

// lastMessage reads the cached last message and falls back to the database.
func (s *chatService) lastMessage(ctx context.Context, roomID string) *dto.ChatMessageResponse {
	if s.redis != nil && s.redisCache != "" {
		key := fmt.Sprintf("%s:%s", s.redisCache, roomID)
		if result, err := s.redis.Get(ctx, key).Result(); err == nil {
			var message dto.ChatMessageResponse
			if err := json.Unmarshal([]byte(result), &message); err == nil {
				return &message
			}
			s.logger.Warn().Str("room_id", roomID).Msg("discarding malformed cached chat message")
		}
	}

	latest, err := s.repo.LatestByRoom(ctx, roomID)
	if err != nil {
		return nil
	}
	response := dto.NewChatMessageResponse(latest)
	return &response
}

func (s *chatService) publish(ctx context.Context, message dto.ChatMessageResponse) error {
	event := chatEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *chatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *chatService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *chatService) handleEvent(data []byte) {
	var event chatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat event")
		return
	}
	if event.Source == s.nodeID {
		return
	}

	observability.ChatMessages().WithLabelValues("relay").Inc()
	s.hub.broadcast(event.Message.RoomID, event.Message)
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*chatClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("room_id", room).Str("user_id", client.options.UserID).Msg("chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("room_id", room).Str("user_id", client.options.UserID).Msg("chat client disconnected")
}

func (h *chatHub) broadcast(roomID string, message dto.ChatMessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("room_id", roomID).Str("user_id", client.options.UserID).Msg("dropping chat message for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	ctx := c.baseCtx
	if c.options.CorrelationID != "" {
		ctx = middleware.ContextWithCorrelation(ctx, c.options.CorrelationID)
	}
	session := Session{UserID: c.options.UserID, DisplayName: c.options.DisplayName}

	for {
		var payload dto.ChatSendRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("chat read loop ended")
			return
		}

		// The sender receives its own message through the room broadcast.
		if _, err := c.service.Send(ctx, session, c.options.RoomID, payload); err != nil {
			if errors.Is(err, ErrChatNotMember) {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not a member"))
				return
			}
			c.service.logger.Warn().Err(err).Msg("failed to process chat message")
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		observability.ChatConnections().Dec()
		_ = c.conn.Close()
	})
}
