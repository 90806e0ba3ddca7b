package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type MessageHandler struct {
	store store.Store
}

func NewMessageHandler(s store.Store) *MessageHandler {
	return &MessageHandler{store: s}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.MessageInput
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		middleware.WriteError(w, badRequest("content is required"))
		return
	}
	ctx := r.Context()
	if _, err := h.store.GetUser(ctx, input.ToUserID); err != nil {
		middleware.WriteError(w, orNotFound(err, "User not found"))
		return
	}
	kind := input.MessageType
	if kind == "" {
		kind = "text"
	}

	m := models.InboxMessage{
		MessageID:   store.NewID("msg"),
		FromUserID:  user.UserID,
		ToUserID:    input.ToUserID,
		Content:     input.Content,
		MessageType: kind,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.InsertMessage(ctx, m); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, models.MessageSent{Message: "Message sent", MessageID: m.MessageID})
}

// Inbox lists received messages newest first, each with its sender embedded.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	msgs, err := h.store.Inbox(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	senders := map[string]*models.User{}
	for i := range msgs {
		id := msgs[i].FromUserID
		if _, seen := senders[id]; !seen {
			if u, err := h.store.GetUser(ctx, id); err == nil {
				senders[id] = &u
			} else {
				senders[id] = nil
			}
		}
		msgs[i].FromUser = senders[id]
	}
	middleware.WriteJSON(w, msgs)
}

func (h *MessageHandler) Sent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	msgs, err := h.store.Sent(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, msgs)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.MarkRead(r.Context(), mux.Vars(r)["message_id"], user.UserID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, message("Marked as read"))
}
