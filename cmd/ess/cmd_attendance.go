package main

import (
	"fmt"
	"io"

	"axiapac.com/selfservice/attendance"
	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/utils"
	"github.com/spf13/cobra"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's attendance",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), c.reconciler.Status(cmd.Context(), user.ID))
			return nil
		},
	}
}

func (c *cli) clockCmd(in bool) *cobra.Command {
	var input v1.CheckInput
	var photo string

	use, short, action := "clockout", "Clock out for today", "clock-out"
	if in {
		use, short, action = "clockin", "Clock in for today", "clock-in"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := c.currentUser(ctx)
			if err != nil {
				return err
			}
			input.Photo, err = c.file(ctx, photo)
			if err != nil {
				return err
			}

			var status attendance.Status
			var outcome v1.Outcome
			if in {
				status, outcome = c.reconciler.ClockIn(ctx, user.ID, input)
			} else {
				status, outcome = c.reconciler.ClockOut(ctx, user.ID, input)
			}
			if !outcome.OK() {
				return c.fail(ctx, action, outcome)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Location, "location", "", "where you are (address or lat,long)")
	cmd.Flags().StringVar(&input.Notes, "notes", "", "optional notes")
	cmd.Flags().StringVar(&photo, "photo", "", "selfie: a file path or s3://bucket/key")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func printStatus(w io.Writer, status attendance.Status) {
	fmt.Fprintf(w, "%s: %s\n", status.Record.Date, status.State.Label())
	if status.Record.ClockInTime != nil {
		fmt.Fprintf(w, "  Clock in:  %s\n", *status.Record.ClockInTime)
	}
	if status.Record.ClockOutTime != nil {
		fmt.Fprintf(w, "  Clock out: %s\n", *status.Record.ClockOutTime)
	}
	if status.Source != attendance.SourceRemote {
		fmt.Fprintf(w, "  (offline, showing %s data)\n", utils.FormatBoolean(status.Source == attendance.SourceCache, "saved", "default"))
	}
}
