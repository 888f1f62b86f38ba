package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// ContactSource resolves who a user may exchange messages with. The list is
// recomputed on every use, never cached per session.
type ContactSource interface {
	ContactsFor(ctx context.Context, username, role string) ([]string, error)
}

// MaxChatLength caps a single chat message; longer texts are truncated, not
// rejected.
const MaxChatLength = 2000

// Router owns the per-session protocol state machine: sessions start
// unauthenticated, a valid hello (or trusted transport identity) moves them
// to authenticated, and only then do chat and contacts frames flow.
type Router struct {
	registry *Registry
	contacts ContactSource
	logger   zerolog.Logger
}

func NewRouter(registry *Registry, contacts ContactSource, logger zerolog.Logger) *Router {
	return &Router{registry: registry, contacts: contacts, logger: logger}
}

func (rt *Router) Registry() *Registry { return rt.registry }

// Authenticate registers s under username, displacing and closing any
// previous session for the same name, then pushes the ready and contacts
// frames.
func (rt *Router) Authenticate(ctx context.Context, s *Session, username, role string) {
	s.Username = username
	s.Role = role
	if prev := rt.registry.Register(username, s); prev != nil {
		prev.Close()
	}
	s.Send(readyFrame{Type: "ready", Name: username, Role: role})
	rt.sendContacts(ctx, s)
}

// HandleFrame processes one inbound frame. Unknown frame types and
// malformed JSON are ignored; the only pre-auth frame accepted is hello,
// anything else draws an Unauthorized error.
func (rt *Router) HandleFrame(ctx context.Context, s *Session, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}

	if s.Username == "" {
		if f.Type != frameHello {
			s.Send(newErrorFrame("Unauthorized"))
			return
		}
		rt.handleHello(ctx, s, f)
		return
	}

	switch f.Type {
	case frameContacts:
		rt.sendContacts(ctx, s)
	case frameChat:
		rt.handleChat(ctx, s, f)
	}
}

// handleHello validates the announced identity. A hello missing its name or
// role is silently dropped so probing clients learn nothing.
func (rt *Router) handleHello(ctx context.Context, s *Session, f Frame) {
	name := strings.TrimSpace(f.Name)
	role := strings.TrimSpace(f.Role)
	if name == "" || role == "" {
		return
	}
	rt.Authenticate(ctx, s, name, role)
}

func (rt *Router) handleChat(ctx context.Context, s *Session, f Frame) {
	to := strings.TrimSpace(f.To)
	if to == "" {
		return
	}

	allowed, err := rt.canMessage(ctx, s, to)
	if err != nil {
		rt.logger.Error().Err(err).Str("from", s.Username).Msg("contact resolution failed")
		s.Send(newErrorFrame("contact resolution failed"))
		return
	}
	if !allowed {
		s.Send(newErrorFrame("Forbidden recipient"))
		return
	}

	text := f.Text
	if len(text) > MaxChatLength {
		// Back off to a rune boundary so the cut never splits a character.
		cut := MaxChatLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	payload := chatFrame{
		Type: frameChat,
		From: s.Username,
		To:   to,
		Text: text,
		TS:   time.Now().UnixMilli(),
	}

	// Recipient first, then the sender's own echo. Offline recipients are a
	// silent no-op.
	if peer := rt.registry.Lookup(to); peer != nil {
		peer.Send(payload)
	}
	s.Send(payload)
}

func (rt *Router) canMessage(ctx context.Context, s *Session, to string) (bool, error) {
	contacts, err := rt.contacts.ContactsFor(ctx, s.Username, s.Role)
	if err != nil {
		return false, err
	}
	for _, c := range contacts {
		if c == to {
			return true, nil
		}
	}
	return false, nil
}

func (rt *Router) sendContacts(ctx context.Context, s *Session) {
	contacts, err := rt.contacts.ContactsFor(ctx, s.Username, s.Role)
	if err != nil {
		rt.logger.Error().Err(err).Str("username", s.Username).Msg("contact resolution failed")
		s.Send(newErrorFrame("contact resolution failed"))
		return
	}
	if contacts == nil {
		contacts = []string{}
	}
	s.Send(contactsFrame{Type: frameContacts, Contacts: contacts})
}

// Disconnect tears a session down: handle-guarded unregister so a displaced
// session closing late cannot evict its replacement.
func (rt *Router) Disconnect(s *Session) {
	if s.Username != "" {
		rt.registry.Unregister(s.Username, s)
	}
	s.Close()
}

// Notify pushes event to each named user that is currently connected.
// Implements the scheduling layer's notifier.
func (rt *Router) Notify(usernames []string, event interface{}) {
	for _, name := range usernames {
		if s := rt.registry.Lookup(name); s != nil {
			s.Send(event)
		}
	}
}
