package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scrimbot/application"
	"scrimbot/application/dto"
	"scrimbot/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Control-channel subjects served by the gateway.
const (
	SubjectScrimCreate = "scrims.create"
	SubjectScrimEdit   = "scrims.edit"
	SubjectScrimDelete = "scrims.delete"
)

// requestTimeout bounds each control request, including time spent waiting
// on another request's row lock for the same scrim.
const requestTimeout = 10 * time.Second

// gatewayReply is the envelope sent back on the reply subject.
type gatewayReply struct {
	OK    bool   `json:"ok"`
	ID    int64  `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// RequestGateway serves the scrim control channel over NATS request/reply.
// It owns decode/encode and error mapping; lifecycle semantics live in the
// application layer.
type RequestGateway struct {
	client    *NATSClient
	lifecycle application.ScrimLifecycleService
}

// NewRequestGateway creates a gateway dispatching to the given lifecycle service
func NewRequestGateway(client *NATSClient, lifecycle application.ScrimLifecycleService) *RequestGateway {
	return &RequestGateway{
		client:    client,
		lifecycle: lifecycle,
	}
}

// Start subscribes the gateway to all control subjects. Call only after
// pending timers have been recovered so requests observe a consistent store.
func (g *RequestGateway) Start() error {
	if err := g.client.SubscribeRequest(SubjectScrimCreate, g.handleCreate); err != nil {
		return fmt.Errorf("failed to serve %s: %w", SubjectScrimCreate, err)
	}
	if err := g.client.SubscribeRequest(SubjectScrimEdit, g.handleEdit); err != nil {
		return fmt.Errorf("failed to serve %s: %w", SubjectScrimEdit, err)
	}
	if err := g.client.SubscribeRequest(SubjectScrimDelete, g.handleDelete); err != nil {
		return fmt.Errorf("failed to serve %s: %w", SubjectScrimDelete, err)
	}
	log.Info("Scrim request gateway started")
	return nil
}

func (g *RequestGateway) handleCreate(data []byte) []byte {
	ctx, cancel, logger := g.requestContext("create_new_scrim")
	defer cancel()

	var req dto.CreateScrimRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.WithError(err).Warn("Rejected malformed create request")
		return marshalReply(gatewayReply{OK: false, Error: "malformed request payload"})
	}

	logger = logger.WithFields(log.Fields{
		"guild_id": req.GuildID,
		"name":     req.Name,
	})

	id, err := g.lifecycle.CreateScrim(ctx, req)
	if err != nil {
		return g.errorReply(logger, err)
	}

	logger.WithField("scrim_id", id).Info("Created scrim")
	return marshalReply(gatewayReply{OK: true, ID: id})
}

func (g *RequestGateway) handleEdit(data []byte) []byte {
	ctx, cancel, logger := g.requestContext("edit_scrim")
	defer cancel()

	var req dto.EditScrimRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.WithError(err).Warn("Rejected malformed edit request")
		return marshalReply(gatewayReply{OK: false, Error: "malformed request payload"})
	}

	logger = logger.WithFields(log.Fields{
		"guild_id": req.GuildID,
		"scrim_id": req.ID,
	})

	if err := g.lifecycle.EditScrim(ctx, req); err != nil {
		return g.errorReply(logger, err)
	}

	logger.Info("Edited scrim")
	return marshalReply(gatewayReply{OK: true, ID: req.ID})
}

func (g *RequestGateway) handleDelete(data []byte) []byte {
	ctx, cancel, logger := g.requestContext("delete_scrim")
	defer cancel()

	var req dto.DeleteScrimRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.WithError(err).Warn("Rejected malformed delete request")
		return marshalReply(gatewayReply{OK: false, Error: "malformed request payload"})
	}

	logger = logger.WithField("scrim_id", req.ID)

	if err := g.lifecycle.DeleteScrim(ctx, req.ID); err != nil {
		return g.errorReply(logger, err)
	}

	logger.Info("Deleted scrim")
	return marshalReply(gatewayReply{OK: true, ID: req.ID})
}

// requestContext builds the per-request context and a logger tagged with a
// correlation ID so a request's log lines can be tied together.
func (g *RequestGateway) requestContext(operation string) (context.Context, context.CancelFunc, *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	logger := log.WithFields(log.Fields{
		"operation":  operation,
		"request_id": uuid.New().String(),
	})
	return ctx, cancel, logger
}

// errorReply maps a lifecycle error onto the wire. Expected denials carry
// their user-facing message; infrastructure faults are logged and masked.
func (g *RequestGateway) errorReply(logger *log.Entry, err error) []byte {
	if services.IsDenial(err) {
		logger.WithError(err).Info("Denied scrim request")
		return marshalReply(gatewayReply{OK: false, Error: err.Error()})
	}

	logger.WithError(err).Error("Scrim request failed")
	return marshalReply(gatewayReply{OK: false, Error: "internal error, try again later"})
}

func marshalReply(reply gatewayReply) []byte {
	data, err := json.Marshal(reply)
	if err != nil {
		// The envelope contains only scalars; this cannot fail in practice
		log.WithError(err).Error("Failed to marshal gateway reply")
		return []byte(`{"ok":false,"error":"internal error"}`)
	}
	return data
}
