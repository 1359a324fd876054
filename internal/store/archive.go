package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

// bookingRecord is the archived form of a booking, keyed by booking id.
type bookingRecord struct {
	models.BookedSlot
	Status    string    `firestore:"status"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type eventRecord struct {
	Type      string    `firestore:"type"`
	Timestamp time.Time `firestore:"timestamp"`
	Ref       string    `firestore:"ref"`
}

// archiveStore keeps a durable copy of every entity the in-memory state
// touches, plus an append-only event log.
type archiveStore struct {
	client *firestore.Client
}

func NewArchiveStore(client *firestore.Client) *archiveStore {
	return &archiveStore{client: client}
}

func (s *archiveStore) Name() string {
	return "firestore"
}

func (s *archiveStore) atmDoc(id string) *firestore.DocumentRef {
	return s.client.Collection("atms").Doc(id)
}

func (s *archiveStore) bookingDoc(id string) *firestore.DocumentRef {
	return s.client.Collection("bookings").Doc(id)
}

func (s *archiveStore) txCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

// Write stores the entity carried by event and appends the event to the log
// in a single bulk write.
func (s *archiveStore) Write(ctx context.Context, event dto.Event) error {
	doc, data, err := s.entity(event)
	if err != nil {
		return err
	}

	bw := s.client.BulkWriter(ctx)
	entityJob, err := bw.Set(doc, data)
	if err != nil {
		bw.End()
		return errs.NewDatabaseError("write", "failed to queue archive write", err)
	}
	eventJob, err := bw.Create(s.client.Collection("events").NewDoc(), eventRecord{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Ref:       doc.Path,
	})
	if err != nil {
		bw.End()
		return errs.NewDatabaseError("write", "failed to queue event log write", err)
	}

	bw.End()
	for _, job := range []*firestore.BulkWriterJob{entityJob, eventJob} {
		if _, err := job.Results(); err != nil {
			return mapError("write", err)
		}
	}

	logger.FromContext(ctx).Debug("archived event", "ref", doc.Path)
	return nil
}

func (s *archiveStore) entity(event dto.Event) (*firestore.DocumentRef, any, error) {
	switch data := event.Data.(type) {
	case models.ATM:
		return s.atmDoc(data.ID), data, nil
	case models.BookedSlot:
		return s.bookingDoc(data.BookingID), bookingRecord{
			BookedSlot: data,
			Status:     bookingStatus(event.Type),
			UpdatedAt:  event.Timestamp,
		}, nil
	case models.Transaction:
		return s.txCollection(data.UserID).Doc(data.ID), data, nil
	default:
		return nil, nil, errs.NewValidationError(fmt.Sprintf("unsupported archive payload %T", event.Data))
	}
}

func bookingStatus(eventType string) string {
	switch eventType {
	case dto.EventBookingConfirmed:
		return "confirmed"
	case dto.EventBookingCancelled:
		return "cancelled"
	case dto.EventBookingExpired:
		return "expired"
	default:
		return "booked"
	}
}

func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return errs.NewExternalServiceError("firestore", true, err)
	default:
		return errs.NewDatabaseError(op, "archive write failed", err)
	}
}
