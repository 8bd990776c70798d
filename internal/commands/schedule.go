package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/model"
)

// upcoming is one projected cash flow with the account it belongs to.
type upcoming struct {
	acct  model.Account
	event model.ScheduledEvent
}

func newScheduleCommand() *cobra.Command {
	var days int
	var all bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show projected interest and maturity cash flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			snap, err := e.st.ReadSnapshot()
			if err != nil {
				return err
			}

			now := time.Now()
			horizon := now.AddDate(0, 0, days)

			var events []upcoming
			for _, a := range snap.Accounts {
				for _, ev := range accountSchedule(a) {
					if !all && (ev.Date.Before(now) || ev.Date.After(horizon)) {
						continue
					}
					events = append(events, upcoming{acct: a, event: ev})
				}
			}
			sort.Slice(events, func(i, j int) bool {
				return events[i].event.Date.Before(events[j].event.Date)
			})

			if len(events) == 0 {
				fmt.Println("no scheduled cash flows")
				return nil
			}
			for _, u := range events {
				sign := "+"
				if u.event.Direction == model.Outflow {
					sign = "-"
				}
				fmt.Printf("%s  %s%-12s  %s (%s)\n",
					u.event.Date.Format(dateFormat), sign, u.event.Amount.StringFixed(2),
					u.event.Label, u.acct.Name)
			}
			return nil
		},
	}

	dirFlag(cmd)
	cmd.Flags().IntVar(&days, "days", 90, "horizon in days")
	cmd.Flags().BoolVar(&all, "all", false, "include past and far-future events")

	return cmd
}

// accountSchedule flattens every projected event an account's detail carries.
func accountSchedule(a model.Account) []model.ScheduledEvent {
	switch d := a.Detail.(type) {
	case *model.LiabilityDetail:
		return d.Schedule
	case *model.SavingsDetail:
		var events []model.ScheduledEvent
		for _, dep := range d.Deposits {
			events = append(events, dep.Schedule...)
		}
		return events
	default:
		return nil
	}
}
