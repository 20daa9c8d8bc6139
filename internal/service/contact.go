package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/metrics"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/sse"
	"github.com/doctrot/site-server-go/internal/util"
)

const (
	EventContactSubmission = "contact_submission"
	DefaultContactPageSize = 50
	MaxContactPageSize     = 200
)

// EventPublisher delivers dashboard notifications. *sse.Broker satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event sse.Event) error
}

type ContactService struct {
	repo      repository.ContactSubmissionRepository
	publisher EventPublisher
	now       func() time.Time
}

func NewContactService(repo repository.ContactSubmissionRepository, publisher EventPublisher) *ContactService {
	return &ContactService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ContactService) Create(ctx context.Context, params model.CreateContactSubmissionParams) (*model.ContactSubmission, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Message = strings.TrimSpace(params.Message)
	params.Phone = trimOptional(params.Phone)
	params.Subject = trimOptional(params.Subject)

	if err := util.ValidateStruct(params); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	sub, err := s.repo.Create(ctx, params, s.now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	metrics.RecordContactSubmission()

	if s.publisher != nil {
		event, err := sse.NewEvent(EventContactSubmission, sub)
		if err == nil {
			err = s.publisher.Publish(ctx, sse.TopicAdmin, event)
		}
		if err != nil {
			log.Warn().Err(err).Int64("id", sub.ID).Msg("failed to publish contact notification")
		}
	}

	return sub, nil
}

// List returns submissions newest first and the total number stored.
func (s *ContactService) List(ctx context.Context, limit, offset int) ([]model.ContactSubmission, int, error) {
	if limit <= 0 {
		limit = DefaultContactPageSize
	}
	if limit > MaxContactPageSize {
		limit = MaxContactPageSize
	}
	if offset < 0 {
		offset = 0
	}

	subs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return subs, total, nil
}

// MarkRead flags a submission as read. There is no way back to unread.
func (s *ContactService) MarkRead(ctx context.Context, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id, s.now())
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.NotFound("Contact submission")
	}
	return nil
}

// Delete reports whether a submission was removed.
func (s *ContactService) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, apperrors.Database(err)
	}
	return ok, nil
}

func (s *ContactService) CountUnread(ctx context.Context) (int, error) {
	n, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return n, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
