package views

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
	"github.com/mamadbah2/herdview/internal/service/inventory"
)

// ErrUnknownTab indicates a view name outside the tab strip.
var ErrUnknownTab = errors.New("unknown tab")

// Result caps per query.
const (
	RosterLimit    = 200
	SessionsLimit  = 200
	ExposuresLimit = 500
	FeedLimit      = 2000
)

// Notices shown instead of a table.
const (
	NoticeFeedMissing     = "Feed tables missing: this backup has no feed log yet."
	NoticeBreedingMissing = "Breeding tables missing: this backup has no breeding data yet."
	NoticeNoSessions      = "No sessions."
)

// Panel keys.
const (
	PanelAnimals   = "animals"
	PanelFeed      = "feed"
	PanelInventory = "inventory"
	PanelSessions  = "sessions"
	PanelExposures = "exposures"
)

// Panel is the data of one view area before rendering.
type Panel struct {
	Key        string
	Title      string
	Notice     string
	Records    []models.Record
	PhotoField string
	Filterable bool
	Diagnostic *models.InventoryDiagnostic
}

// Result is the data a tab shows.
type Result struct {
	Tab      models.Tab
	Strategy string
	Panels   []Panel
}

// Resolver computes the inventory snapshot.
type Resolver interface {
	Resolve(ctx context.Context, q sqlite.Querier) (inventory.Result, error)
}

// Controller produces the data behind each tab.
type Controller struct {
	inventory Resolver
	logger    *zap.Logger
}

// NewController wires the tab controller.
func NewController(inv Resolver, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = inventory.NewPolicy(logger.Named("inventory"))
	}
	return &Controller{inventory: inv, logger: logger}
}

// Load fetches the records of tab from the snapshot.
func (c *Controller) Load(ctx context.Context, tab models.Tab, q sqlite.Querier) (Result, error) {
	c.logger.Debug("loading view", zap.String("tab", string(tab)))

	switch tab {
	case models.TabRoster:
		return c.loadRoster(ctx, q)
	case models.TabFeed:
		return c.loadFeed(ctx, q)
	case models.TabInventory:
		return c.loadInventory(ctx, q)
	case models.TabBreeding:
		return c.loadBreeding(ctx, q)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
}

func (c *Controller) loadRoster(ctx context.Context, q sqlite.Querier) (Result, error) {
	records, err := q.Select(ctx, sqlite.Builder.
		Select("id", "tag", "status", "sex", "role", "group_name", "cohort", "photo_path").
		From(models.TableAnimals).
		OrderBy("tag ASC").
		Limit(RosterLimit))
	if err != nil {
		return Result{}, fmt.Errorf("load roster: %w", err)
	}

	return Result{Tab: models.TabRoster, Panels: []Panel{{
		Key:        PanelAnimals,
		Title:      "Animals",
		Records:    records,
		PhotoField: models.AnimalPhotoField,
		Filterable: true,
	}}}, nil
}

func (c *Controller) loadFeed(ctx context.Context, q sqlite.Querier) (Result, error) {
	panel := Panel{Key: PanelFeed, Title: "Feed usage", Filterable: true}

	present, err := q.HasTables(ctx, models.TableFeedUsage, models.TableFeedTypes)
	if err != nil {
		return Result{}, fmt.Errorf("probe feed tables: %w", err)
	}
	if !present {
		panel.Notice = NoticeFeedMissing
		return Result{Tab: models.TabFeed, Panels: []Panel{panel}}, nil
	}

	records, err := q.Select(ctx, sqlite.Builder.
		Select("fu.date", "fu.group_name", "ft.name AS feed_type", "fu.amount", "fu.unit", "fu.unit_cost").
		From(models.TableFeedUsage+" fu").
		LeftJoin(models.TableFeedTypes+" ft ON ft.id = fu.feed_type_id").
		OrderBy("fu.date DESC", "fu.rowid DESC").
		Limit(FeedLimit))
	if err != nil {
		return Result{}, fmt.Errorf("load feed log: %w", err)
	}

	panel.Records = records
	return Result{Tab: models.TabFeed, Panels: []Panel{panel}}, nil
}

func (c *Controller) loadInventory(ctx context.Context, q sqlite.Querier) (Result, error) {
	res, err := c.inventory.Resolve(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("resolve inventory: %w", err)
	}

	panel := Panel{Key: PanelInventory, Title: "On hand", Filterable: true}
	if res.Diagnostic != nil {
		panel.Notice = res.Diagnostic.Message
		panel.Diagnostic = res.Diagnostic
	} else {
		panel.Records = res.Records
	}

	return Result{Tab: models.TabInventory, Strategy: res.Strategy, Panels: []Panel{panel}}, nil
}

func (c *Controller) loadBreeding(ctx context.Context, q sqlite.Querier) (Result, error) {
	present, err := q.HasTables(ctx, models.TableBreedingSessions, models.TableBreedingExposures)
	if err != nil {
		return Result{}, fmt.Errorf("probe breeding tables: %w", err)
	}
	if !present {
		return Result{Tab: models.TabBreeding, Panels: []Panel{{
			Key:        PanelExposures,
			Title:      "Exposures",
			Notice:     NoticeBreedingMissing,
			Filterable: true,
		}}}, nil
	}

	sessions, err := q.Select(ctx, sqlite.Builder.
		Select("id", "group_name", "start_date", "end_date", "gestation_days", "notes").
		From(models.TableBreedingSessions).
		OrderBy("start_date DESC", "id DESC").
		Limit(SessionsLimit))
	if err != nil {
		return Result{}, fmt.Errorf("load breeding sessions: %w", err)
	}

	exposures, err := q.Select(ctx, sqlite.Builder.
		Select("session_id", "animal_tag", "status", "exposed", "observed_breeding_date",
			"preg_check_date", "result", "due_date", "notes", "photo_path").
		From(models.TableBreedingExposures).
		OrderBy("session_id ASC", "animal_tag ASC").
		Limit(ExposuresLimit))
	if err != nil {
		return Result{}, fmt.Errorf("load breeding exposures: %w", err)
	}

	sessionsPanel := Panel{Key: PanelSessions, Title: "Sessions", Records: sessions}
	if len(sessions) == 0 {
		sessionsPanel.Notice = NoticeNoSessions
	}

	return Result{Tab: models.TabBreeding, Panels: []Panel{
		sessionsPanel,
		{
			Key:        PanelExposures,
			Title:      "Exposures",
			Records:    exposures,
			PhotoField: models.ExposurePhotoField,
			Filterable: true,
		},
	}}, nil
}
