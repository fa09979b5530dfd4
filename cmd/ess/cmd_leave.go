package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"axiapac.com/selfservice/report"
	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
	"axiapac.com/selfservice/utils"
	"github.com/spf13/cobra"
)

func (c *cli) leaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave requests",
	}
	cmd.AddCommand(c.leaveListCmd(), c.leaveCreateCmd(), c.leaveDeleteCmd(), c.leaveExportCmd())
	return cmd
}

func (c *cli) leaveQueryFlags(cmd *cobra.Command, query *v1.LeaveQuery) {
	cmd.Flags().StringVar((*string)(&query.Status), "status", "", "pending, approved, rejected or cancelled")
	cmd.Flags().StringVar((*string)(&query.LeaveType), "type", "", "annual, sick, personal, maternity or unpaid")
}

func (c *cli) leaveListCmd() *cobra.Command {
	query := v1.LeaveQuery{Page: 1, PerPage: 10}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your leave requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.currentUser(cmd.Context()); err != nil {
				return err
			}
			page, outcome := c.client.Leave.Search(cmd.Context(), query)
			if !outcome.OK() {
				return c.fail(cmd.Context(), "leave list", outcome)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tFROM\tTO\tSTATUS\tREASON")
			for _, item := range page.Data {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.LeaveType, item.StartDate, item.EndDate, item.Status, item.Reason)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d total\n", page.CurrentPage, page.LastPage, page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&query.PerPage, "per-page", 10, "requests per page")
	c.leaveQueryFlags(cmd, &query)
	return cmd
}

func (c *cli) leaveCreateCmd() *cobra.Command {
	var input v1.LeaveInput
	var attachment string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a leave request",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.currentUser(ctx); err != nil {
				return err
			}
			if !input.LeaveType.Valid() {
				return fmt.Errorf("unknown leave type %q", input.LeaveType)
			}
			for _, d := range []string{input.StartDate, input.EndDate} {
				if _, err := utils.ParseDate(d); err != nil {
					return err
				}
			}
			file, err := leaveAttachment(attachment)
			if err != nil {
				return err
			}
			input.Attachment = file

			created, outcome := c.client.Leave.Create(ctx, input)
			if !outcome.OK() {
				return c.fail(ctx, "leave create", outcome)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave request %d submitted (%s)\n", created.ID, created.Status)
			return nil
		},
	}
	cmd.Flags().StringVar((*string)(&input.LeaveType), "type", string(leave.Annual), "annual, sick, personal, maternity or unpaid")
	cmd.Flags().StringVar(&input.StartDate, "start", "", "first day, yyyy-MM-dd")
	cmd.Flags().StringVar(&input.EndDate, "end", "", "last day, yyyy-MM-dd")
	cmd.Flags().StringVar(&input.Reason, "reason", "", "reason for the leave")
	cmd.Flags().StringVar(&attachment, "attachment", "", "supporting document (jpg, png or pdf)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// leaveAttachment reads a document as is; only photos go through capture.
func leaveAttachment(path string) (*v1.File, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attachment: %w", err)
	}
	return &v1.File{Filename: filepath.Base(path), Data: data}, nil
}

func (c *cli) leaveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Withdraw a pending leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if _, err := c.currentUser(cmd.Context()); err != nil {
				return err
			}
			if outcome := c.client.Leave.Delete(cmd.Context(), id); !outcome.OK() {
				return c.fail(cmd.Context(), "leave delete", outcome)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave request %d deleted\n", id)
			return nil
		},
	}
}

func (c *cli) leaveExportCmd() *cobra.Command {
	var query v1.LeaveQuery
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all your leave requests to xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.currentUser(ctx); err != nil {
				return err
			}

			var items []common.LeaveRequestDTO
			query.PerPage = 100
			for query.Page = 1; ; query.Page++ {
				page, outcome := c.client.Leave.Search(ctx, query)
				if !outcome.OK() {
					return c.fail(ctx, "leave export", outcome)
				}
				items = append(items, page.Data...)
				if page.CurrentPage >= page.LastPage {
					break
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteLeaveReport(f, items); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d leave requests to %s\n", len(items), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "leave.xlsx", "output file")
	c.leaveQueryFlags(cmd, &query)
	return cmd
}
