package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/gateway"
	"github.com/dori/lifeos/internal/logging"
	"github.com/dori/lifeos/internal/model"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>",
		Short: "Quick add a task",
		Long: `Quick add a task.

  Priority:  !low !medium !high, or !0 to !5
  Area:      +area         (e.g. +home, +work)
  Due date:  due:today due:tomorrow due:friday due:2024-01-15`,
		Example: `  lifeos add "Buy groceries"
  lifeos add Review PR +work !high due:tomorrow`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			q := parseQuickAdd(strings.Join(args, " "))
			if q.Title == "" {
				return fmt.Errorf("task title is empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			// Quick add skips the instance lock so it works next to a
			// running board.
			var gw gateway.Gateway
			if cfg.RemoteURL != "" {
				client, err := gateway.NewHTTPClient(cfg.RemoteURL, cfg.Gateway.Timeout, logging.Discard())
				if err != nil {
					return err
				}
				gw = client
			} else {
				store, err := db.Open(cfg.DBPath, db.WithLogger(logging.Discard()))
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer store.Close()
				gw = gateway.NewLocal(store)
			}

			if q.area != "" {
				id, err := findArea(ctx, gw, q.area)
				if err != nil {
					return err
				}
				q.AreaID = &id
			}

			task, err := gw.CreateTask(ctx, q.NewTask)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created: %s\n", task.Title)
			if task.DueDate != nil {
				fmt.Fprintf(out, "Due: %s\n", formatDueDate(*task.DueDate))
			}
			if task.Priority != model.PriorityNone {
				fmt.Fprintf(out, "Priority: %d\n", task.Priority)
			}
			if q.area != "" {
				fmt.Fprintf(out, "Area: %s\n", q.area)
			}
			return nil
		},
	}
}

// findArea looks an area up by name, ignoring case
func findArea(ctx context.Context, gw gateway.Gateway, name string) (string, error) {
	areas, err := gw.FetchAreas(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range areas {
		if strings.EqualFold(a.Name, name) {
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("no area named %q", name)
}

type quickAddTask struct {
	model.NewTask
	area string
}

func parseQuickAdd(text string) quickAddTask {
	var task quickAddTask

	words := strings.Fields(text)
	var titleParts []string

	for _, word := range words {
		switch {
		// Area (+home, +work)
		case strings.HasPrefix(word, "+") && len(word) > 1:
			task.area = strings.TrimPrefix(word, "+")

		// Priority (!low, !high, !3)
		case strings.HasPrefix(word, "!"):
			if p, ok := parsePriority(strings.TrimPrefix(word, "!")); ok {
				task.Priority = p
			} else {
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			dateStr := strings.TrimPrefix(strings.ToLower(word), "due:")
			if parsed := parseNaturalDate(dateStr); parsed != nil {
				task.DueDate = parsed
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	task.Title = strings.Join(titleParts, " ")
	return task
}

// parsePriority maps a bucket name or a 0-5 number to a priority. Bucket
// names use the value a drop into that column would write.
func parsePriority(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "low", "l":
		return 1, true
	case "medium", "med", "m":
		return 3, true
	case "high", "hi", "h":
		return 5, true
	}
	p, err := strconv.Atoi(s)
	if err != nil || model.ValidatePriority(p) != nil {
		return 0, false
	}
	return p, true
}

func parseNaturalDate(s string) *time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	weekdays := map[string]time.Weekday{
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
		"sunday": time.Sunday, "sun": time.Sunday,
	}
	if day, ok := weekdays[s]; ok {
		return nextWeekday(today, day)
	}

	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
			return &t
		}
	}

	return nil
}

// nextWeekday returns the next occurrence of day after today
func nextWeekday(today time.Time, day time.Weekday) *time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	t := today.AddDate(0, 0, daysUntil)
	return &t
}

func formatDueDate(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if t.Year() == tomorrow.Year() && t.YearDay() == tomorrow.YearDay() {
		return "tomorrow"
	}

	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}

	return t.Format("Jan 2, 2006")
}
