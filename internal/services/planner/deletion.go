package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/dateparse"
	"github.com/benvon/smart-planner/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const dayFormat = "2006-01-02"

// DeletionService interprets delete commands and runs them against storage.
type DeletionService struct {
	tasks    TaskDeleter
	resolver *dateparse.Resolver
	logger   *zap.Logger
	now      func() time.Time
}

// DeletionOption configures a DeletionService.
type DeletionOption func(*DeletionService)

// WithDeletionClock overrides the clock used to resolve relative dates.
func WithDeletionClock(now func() time.Time) DeletionOption {
	return func(s *DeletionService) {
		s.now = now
	}
}

// NewDeletionService creates a new deletion service
func NewDeletionService(tasks TaskDeleter, resolver *dateparse.Resolver, logger *zap.Logger, opts ...DeletionOption) *DeletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DeletionService{
		tasks:    tasks,
		resolver: resolver,
		logger:   logger,
		now:      systemNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delete runs an explicit item list when one is given, otherwise the free
// text command. Zero matches is a successful result, so repeating a command
// is harmless.
func (s *DeletionService) Delete(ctx context.Context, req models.DeleteRequest) (result *models.DeletionResult, err error) {
	ctx, span := startSpan(ctx, "planner.Delete")
	defer func() {
		if result != nil {
			span.SetAttributes(attribute.Int64("planner.deleted", result.Deleted))
		}
		endSpan(span, err)
	}()

	if req.IsExplicit() {
		span.SetAttributes(attribute.String("planner.delete_mode", "explicit"))
		return s.deleteExplicit(ctx, req.Tasks)
	}
	span.SetAttributes(attribute.String("planner.delete_mode", "text"))
	return s.deleteByText(ctx, req.Text)
}

// Preview resolves a free-text command to its predicate without deleting.
func (s *DeletionService) Preview(text string) (models.DeletionPredicate, error) {
	return s.resolvePredicate(text, s.now())
}

func (s *DeletionService) resolvePredicate(text string, now time.Time) (models.DeletionPredicate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DeletionPredicate{}, fmt.Errorf("%w: provide a list of tasks or a delete command", ErrInvalidInput)
	}

	var pred models.DeletionPredicate
	if rng, ok := s.resolver.ResolveDateRange(text, now); ok {
		bounded := models.DateRange{
			Start: s.resolver.StartOfDay(rng.Start),
			End:   s.resolver.EndOfDay(rng.End),
		}
		pred.DateRange = &bounded
	} else if day, ok := s.resolver.ResolveSingleDate(text, now); ok {
		bounded := s.resolver.DayRange(day)
		pred.DateRange = &bounded
	} else {
		return models.DeletionPredicate{}, ErrNoDateDetected
	}

	if hint, ok := dateparse.ExtractTitleHint(text); ok {
		pred.TitleFilter = &hint
	}
	return pred, nil
}

func (s *DeletionService) deleteByText(ctx context.Context, text string) (*models.DeletionResult, error) {
	pred, err := s.resolvePredicate(text, s.now())
	if err != nil {
		return nil, err
	}

	n, err := s.tasks.DeleteMatching(ctx, pred.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to delete tasks: %w", err)
	}

	s.logger.Info("tasks_deleted_by_command",
		zap.Int64("deleted", n),
		zap.Time("from", pred.DateRange.Start),
		zap.Time("to", pred.DateRange.End),
		zap.Bool("title_filtered", pred.TitleFilter != nil),
	)

	return &models.DeletionResult{
		Message:   describeDeletion(n, pred),
		Deleted:   n,
		Predicate: pred,
	}, nil
}

func (s *DeletionService) deleteExplicit(ctx context.Context, items []models.DeletionItem) (*models.DeletionResult, error) {
	now := s.now()
	result := &models.DeletionResult{
		Predicate: models.DeletionPredicate{ExplicitItems: items},
	}

	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("%w: every task needs a title", ErrInvalidInput)
		}
	}

	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		itemResult := models.DeletionItemResult{Title: title}
		filter := models.TaskFilter{TitleContains: title}

		if item.Date != nil && strings.TrimSpace(*item.Date) != "" {
			day, ok := s.resolveItemDate(*item.Date, now)
			if !ok {
				itemResult.Date = *item.Date
				itemResult.Summary = fmt.Sprintf("Skipped %q: could not understand date %q", title, *item.Date)
				result.Items = append(result.Items, itemResult)
				continue
			}
			bounds := s.resolver.DayRange(day)
			filter.From, filter.To = &bounds.Start, &bounds.End
			itemResult.Date = bounds.Start.Format(dayFormat)
		}

		n, err := s.tasks.DeleteMatching(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to delete tasks matching %q: %w", title, err)
		}
		itemResult.Deleted = n
		itemResult.Summary = fmt.Sprintf("Deleted %d task(s) matching %q", n, title)
		if itemResult.Date != "" {
			itemResult.Summary += " on " + itemResult.Date
		}
		result.Deleted += n
		result.Items = append(result.Items, itemResult)
	}

	s.logger.Info("tasks_deleted_by_list",
		zap.Int("items", len(items)),
		zap.Int64("deleted", result.Deleted),
	)
	result.Message = fmt.Sprintf("Deleted %d task(s).", result.Deleted)
	return result, nil
}

// resolveItemDate accepts ISO dates, RFC3339 timestamps and anything the
// resolver understands.
func (s *DeletionService) resolveItemDate(date string, now time.Time) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if t, err := time.ParseInLocation(dayFormat, date, s.resolver.Location()); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, true
	}
	return s.resolver.ResolveSingleDate(date, now)
}

func describeDeletion(n int64, pred models.DeletionPredicate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deleted %d task(s)", n)
	if pred.TitleFilter != nil {
		fmt.Fprintf(&b, " matching %q", *pred.TitleFilter)
	}
	if rng := pred.DateRange; rng != nil {
		start, end := rng.Start.Format(dayFormat), rng.End.Format(dayFormat)
		if start == end {
			fmt.Fprintf(&b, " on %s", start)
		} else {
			fmt.Fprintf(&b, " from %s to %s", start, end)
		}
	}
	b.WriteString(".")
	return b.String()
}
