package server

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"odin-cache/internal/cache"
	"odin-cache/internal/metrics"
	"odin-cache/internal/protocol"
)

// Handler runs one connection's request loop: decode a command, dispatch
// it against the shared Cache, encode and write the response. Command
// processing for a single connection is strictly sequential — no
// pipelining reordering.
type Handler struct {
	store   *cache.Cache
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewHandler builds a Handler bound to a shared cache handle.
func NewHandler(store *cache.Cache, registry *metrics.Registry, log *zap.Logger) *Handler {
	return &Handler{store: store, metrics: registry, log: log}
}

// Dispatch classifies and executes one decoded request, returning the
// response value to write back. It never returns an error itself — command
// misuse and semantic failures are folded into protocol.Error responses.
// The one exception is ECHO with a missing argument, which panics by
// design; Dispatch reproduces that and relies on the caller recovering it
// per-request so one connection's misuse can't take down others.
func (h *Handler) Dispatch(req protocol.Value) protocol.Value {
	name, args, ok := req.ToCommand()
	if !ok {
		return protocol.Err("invalid request")
	}

	command := strings.ToUpper(name)
	h.countCommand(command)

	switch command {
	case "PING":
		return protocol.SimpleString("PONG")
	case "ECHO":
		return args[0]
	case "GET":
		return h.handleGet(args)
	case "SET":
		return h.handleSet(args)
	case "DEL":
		return h.handleDel(args)
	case "EXISTS":
		return h.handleExists(args)
	default:
		return protocol.Err(fmt.Sprintf("command not implemented: %s", name))
	}
}

func (h *Handler) countCommand(command string) {
	if h.metrics != nil {
		h.metrics.CommandsTotal.WithLabelValues(command).Inc()
	}
}

func (h *Handler) handleGet(args []protocol.Value) protocol.Value {
	if len(args) != 1 || args[0].Kind != protocol.KindBulkString {
		return protocol.Err("GET requires one argument")
	}
	value, ok := h.store.Get(args[0].Str)
	if !ok {
		return protocol.Null()
	}
	return protocol.SimpleString(value)
}

func (h *Handler) handleSet(args []protocol.Value) protocol.Value {
	switch len(args) {
	case 2:
		if args[0].Kind != protocol.KindBulkString || args[1].Kind != protocol.KindBulkString {
			return protocol.Err("SET requires two or four arguments")
		}
		h.store.Set(args[0].Str, args[1].Str)
		return protocol.SimpleString("OK")
	case 4:
		if args[0].Kind != protocol.KindBulkString || args[1].Kind != protocol.KindBulkString ||
			args[2].Kind != protocol.KindBulkString || args[3].Kind != protocol.KindBulkString {
			return protocol.Err("SET requires two or four arguments")
		}
		return h.handleSetWithExpiry(args[0].Str, args[1].Str, args[2].Str, args[3].Str)
	default:
		return protocol.Err("SET requires two or four arguments")
	}
}

func (h *Handler) handleSetWithExpiry(key, value, formatTag, amountArg string) protocol.Value {
	amount, err := cast.ToInt64E(amountArg)
	if err != nil || amount < 0 {
		return protocol.Err("Unsupported expiry format")
	}

	// An unrecognized format tag falls back to treating amount as a raw
	// millisecond count rather than producing a never-expiring entry —
	// distinct from Expiry's own (amount, format) constructor, which
	// treats an unknown format as never-expires.
	format := cache.ParseFormat(formatTag)
	var expiry cache.Expiry
	if format == cache.FormatUnknown {
		expiry = cache.FromMillis(amount)
	} else {
		expiry = cache.FromAmountFormat(amount, format)
	}
	h.store.SetWithExpiry(key, value, expiry)
	return protocol.SimpleString("OK")
}

func (h *Handler) handleDel(args []protocol.Value) protocol.Value {
	if len(args) != 1 || args[0].Kind != protocol.KindBulkString {
		return protocol.Err("DEL requires one argument")
	}
	if err := h.store.Del(args[0].Str); err != nil {
		return protocol.Err(err.Error())
	}
	return protocol.SimpleString("OK")
}

func (h *Handler) handleExists(args []protocol.Value) protocol.Value {
	if len(args) != 1 || args[0].Kind != protocol.KindBulkString {
		return protocol.Err("EXISTS requires one argument")
	}
	if h.store.Exists(args[0].Str) {
		return protocol.SimpleString("true")
	}
	return protocol.SimpleString("false")
}
