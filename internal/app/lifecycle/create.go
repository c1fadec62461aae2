package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"carematch/internal/app/ds"
	"carematch/internal/app/dto"
	"carematch/internal/app/events"
	"carematch/internal/app/role"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultTitle is the title every new request starts with.
const DefaultTitle = "Grocery shopping"

var clockPattern = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$|^24:00$`)

func newValidator(today func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		d, err := time.ParseInLocation(dto.DateLayout, fl.Field().String(), today().Location())
		return err == nil && !d.Before(today())
	})
	return v
}

// minutes converts a validated HH:mm into minutes after midnight.
func minutes(hhmm string) int {
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m
}

func (e *Engine) checkNewRequest(in dto.CreateRequestRequest) error {
	if err := e.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
	}
	if minutes(in.ScheduledEndTime) <= minutes(in.ScheduledStartTime) {
		return fmt.Errorf("%w: scheduled end time must be after start time", ErrInvalidRequest)
	}
	return nil
}

// CreateRequest posts a new open request for the calling requester. Location
// and centre defaults come from the requester's profile.
func (e *Engine) CreateRequest(ctx context.Context, caller Caller, in dto.CreateRequestRequest) (req *ds.Request, err error) {
	ctx, span := e.start(ctx, "CreateRequest", caller, attribute.String("target", string(ds.RequestOpen)))
	fields := logrus.Fields{
		"subject": caller.Subject,
		"role":    caller.Role.String(),
		"target":  ds.RequestOpen,
	}
	defer func() {
		if req != nil {
			fields["request_id"] = req.ID
		}
		e.finish(ctx, span, e.creates, err)
		logOutcome(fields, err, "create request")
	}()

	if caller.Role != role.Requester || caller.Subject == "" {
		return nil, fmt.Errorf("%w: only requesters can post requests", ErrForbidden)
	}
	if err := e.checkNewRequest(in); err != nil {
		return nil, err
	}

	repo := e.repo.WithContext(ctx)
	user, err := repo.GetUserByID(caller.Subject)
	if err != nil {
		return nil, classify(fmt.Errorf("requester profile: %w", err))
	}

	date, _ := time.Parse(dto.DateLayout, in.ScheduledDate)
	req = &ds.Request{
		RequesterID:        caller.Subject,
		Title:              DefaultTitle,
		Description:        in.Description,
		Status:             ds.RequestOpen,
		ScheduledDate:      date,
		ScheduledStartTime: in.ScheduledStartTime,
		ScheduledEndTime:   in.ScheduledEndTime,
		WorkLocation1:      in.Location1,
		WorkLocation2:      user.Address1,
		CenterID:           user.CenterID,
	}
	if err := repo.CreateRequest(req); err != nil {
		return nil, classify(err)
	}

	e.publish(ctx, events.New(events.RequestCreated, req, caller.Subject, caller.Role.String(), e.now()))
	return req, nil
}
