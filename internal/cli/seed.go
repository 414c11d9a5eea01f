package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/id"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

// Fixture is a YAML document describing one user's history.
//
//	user:
//	  email: demo@example.com
//	  password: correct-horse-battery
//	fasts:
//	  - days_ago: 2
//	    hour: 20
//	    hours: 17
//	    goal_hours: 16
//	  - start: 2025-03-04T20:00:00Z
//	    active: true
//	hydration:
//	  - days_ago: 0
//	    hour: 9
//	    amount: 500
//	moods:
//	  - days_ago: 0
//	    hour: 12
//	    mood: good
//	    energy: 4
type Fixture struct {
	User      FixtureUser        `yaml:"user"`
	Fasts     []FixtureFast      `yaml:"fasts"`
	Hydration []FixtureHydration `yaml:"hydration"`
	Moods     []FixtureMood      `yaml:"moods"`
}

// FixtureUser is created when no account with Email exists yet.
type FixtureUser struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
	Timezone    string `yaml:"timezone"`
}

// FixtureTime places an entry either at Start or at Hour o'clock DaysAgo days before today.
type FixtureTime struct {
	Start   time.Time `yaml:"start"`
	DaysAgo int       `yaml:"days_ago"`
	Hour    int       `yaml:"hour"`
}

// resolve returns the absolute instant in loc.
func (ft FixtureTime) resolve(now time.Time, loc *time.Location) time.Time {
	if !ft.Start.IsZero() {
		return ft.Start
	}
	day, _ := analytics.DayBounds(now.AddDate(0, 0, -ft.DaysAgo), loc)
	return day.Add(time.Duration(ft.Hour) * time.Hour)
}

// FixtureFast is a completed fast of Hours length, or the running fast when Active.
type FixtureFast struct {
	FixtureTime `yaml:",inline"`
	Hours       float64 `yaml:"hours"`
	GoalHours   float64 `yaml:"goal_hours"`
	Notes       string  `yaml:"notes"`
	Active      bool    `yaml:"active"`
}

// FixtureHydration is one water log. Goal defaults to the daily default.
type FixtureHydration struct {
	FixtureTime `yaml:",inline"`
	Amount      int `yaml:"amount"`
	Goal        int `yaml:"goal"`
}

// FixtureMood is one mood log.
type FixtureMood struct {
	FixtureTime `yaml:",inline"`
	Mood        string `yaml:"mood"`
	Energy      int    `yaml:"energy"`
	Notes       string `yaml:"notes"`
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	UserID      string
	UserCreated bool
	Fasts       int
	Hydration   int
	Moods       int
}

// ParseFixture decodes a fixture, rejecting unknown keys.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if fx.User.Email == "" {
		return nil, errors.New("fixture user.email is required")
	}
	return &fx, nil
}

// GenerateFixture builds a plausible history of days fasts, one per day with the most recent
// starting two days ago, plus hydration and mood logs on the same days. The same seed always
// gives the same fixture.
func GenerateFixture(user FixtureUser, days int, seed uint64) *Fixture {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	moods := []domain.Mood{domain.MoodGreat, domain.MoodGood, domain.MoodOkay, domain.MoodLow}

	fx := &Fixture{User: user}
	for d := days + 1; d >= 2; d-- {
		goal := []float64{14, 16, 16, 18}[r.IntN(4)]
		fx.Fasts = append(fx.Fasts, FixtureFast{
			FixtureTime: FixtureTime{DaysAgo: d, Hour: 18 + r.IntN(4)},
			Hours:       goal - 3 + r.Float64()*6,
			GoalHours:   goal,
		})
		for _, hour := range []int{8, 12, 16} {
			fx.Hydration = append(fx.Hydration, FixtureHydration{
				FixtureTime: FixtureTime{DaysAgo: d, Hour: hour},
				Amount:      250 + 50*r.IntN(7),
			})
		}
		fx.Moods = append(fx.Moods, FixtureMood{
			FixtureTime: FixtureTime{DaysAgo: d, Hour: 13},
			Mood:        string(moods[r.IntN(len(moods))]),
			Energy:      1 + r.IntN(5),
		})
	}
	return fx
}

// Seed writes fx into st. The user is reused when the email is already registered.
func Seed(ctx context.Context, st store.Store, fx *Fixture, now time.Time, loc *time.Location) (*SeedResult, error) {
	user, created, err := seedUser(ctx, st, fx.User)
	if err != nil {
		return nil, err
	}
	if user.Timezone != "" {
		loc = user.Location(loc)
	}
	res := &SeedResult{UserID: user.ID, UserCreated: created}

	for i, f := range fx.Fasts {
		if err := seedFast(ctx, st, user.ID, f, now, loc); err != nil {
			return res, fmt.Errorf("fast %d: %w", i+1, err)
		}
		res.Fasts++
	}

	for i, h := range fx.Hydration {
		if h.Amount <= 0 {
			return res, fmt.Errorf("hydration %d: amount must be positive", i+1)
		}
		goal := h.Goal
		if goal <= 0 {
			goal = domain.DefaultHydrationGoal
		}
		log := &domain.HydrationLog{
			ID:        id.MustGenerate(id.PrefixHydration),
			UserID:    user.ID,
			Amount:    h.Amount,
			Goal:      goal,
			Timestamp: h.resolve(now, loc),
		}
		if err := st.CreateHydration(ctx, log); err != nil {
			return res, fmt.Errorf("hydration %d: %w", i+1, err)
		}
		res.Hydration++
	}

	for i, m := range fx.Moods {
		mood := domain.Mood(m.Mood)
		if !mood.Valid() {
			return res, fmt.Errorf("mood %d: unknown mood %q", i+1, m.Mood)
		}
		if m.Energy < 1 || m.Energy > 5 {
			return res, fmt.Errorf("mood %d: energy must be between 1 and 5", i+1)
		}
		log := &domain.MoodLog{
			ID:        id.MustGenerate(id.PrefixMood),
			UserID:    user.ID,
			Mood:      mood,
			Energy:    m.Energy,
			Notes:     m.Notes,
			Timestamp: m.resolve(now, loc),
		}
		if err := st.CreateMood(ctx, log); err != nil {
			return res, fmt.Errorf("mood %d: %w", i+1, err)
		}
		res.Moods++
	}

	return res, nil
}

func seedUser(ctx context.Context, st store.UserStore, fu FixtureUser) (*domain.User, bool, error) {
	existing, err := st.GetUserByEmail(ctx, fu.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	if fu.Timezone != "" {
		if _, err := time.LoadLocation(fu.Timezone); err != nil {
			return nil, false, fmt.Errorf("user timezone: %w", err)
		}
	}
	hash, err := auth.HashPassword(fu.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: id.MustGenerate(id.PrefixUser)},
		Email:        strings.ToLower(strings.TrimSpace(fu.Email)),
		PasswordHash: hash,
		DisplayName:  fu.DisplayName,
		Timezone:     fu.Timezone,
	}
	user.InitTimestamps()
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

func seedFast(ctx context.Context, st store.FastStore, userID string, f FixtureFast, now time.Time, loc *time.Location) error {
	goal := f.GoalHours
	if goal == 0 {
		goal = domain.DefaultGoalHours
	}
	if goal < 0 || goal > domain.MaxGoalHours {
		return fmt.Errorf("goal_hours must be in (0, %v]", domain.MaxGoalHours)
	}

	start := f.resolve(now, loc)
	fast := domain.NewFastingSession(id.MustGenerate(id.PrefixFast), userID, start, goal)
	fast.Notes = f.Notes
	if err := st.CreateFast(ctx, fast); err != nil {
		return err
	}
	if f.Active {
		return nil
	}

	if f.Hours <= 0 {
		return errors.New("hours must be positive for a completed fast")
	}
	end := start.Add(time.Duration(f.Hours * float64(time.Hour)))
	if end.After(now) {
		return errors.New("completed fast ends in the future")
	}
	fast.Complete(end, "")
	return st.CompleteFast(ctx, fast)
}

func newSeedCmd(opts *options) *cobra.Command {
	var (
		email    string
		password string
		days     int
		randSeed uint64
	)

	cmd := &cobra.Command{
		Use:   "seed [fixture.yaml]",
		Short: "Load a YAML fixture, or generate a random history, into the database",
		Example: `  fastlogctl seed testdata/demo.yaml
  fastlogctl seed --generate-days 30 --user demo@example.com --password correct-horse-battery`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fx *Fixture
			switch {
			case len(args) == 1:
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				if fx, err = ParseFixture(f); err != nil {
					return err
				}
			case days > 0:
				if email == "" {
					return errors.New("--user is required with --generate-days")
				}
				fx = GenerateFixture(FixtureUser{Email: email, Password: password}, days, randSeed)
			default:
				return errors.New("pass a fixture file or --generate-days")
			}

			return withApp(opts, func(a *app) error {
				res, err := Seed(cmd.Context(), a.store, fx, time.Now(), a.cfg.Tracking.Location)
				if err != nil {
					return err
				}
				verb := "Reused"
				if res.UserCreated {
					verb = "Created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s user %s (%s)\n", verb, fx.User.Email, res.UserID)
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d fasts, %d hydration logs, %d mood logs\n",
					res.Fasts, res.Hydration, res.Moods)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "Email of the user to generate history for")
	cmd.Flags().StringVar(&password, "password", "fastlog-demo-password", "Password when the generated user is new")
	cmd.Flags().IntVar(&days, "generate-days", 0, "Generate this many days of random history")
	cmd.Flags().Uint64Var(&randSeed, "seed", 1, "Random seed for --generate-days")
	return cmd
}
