package main

import (
	"github.com/spf13/cobra"

	"github.com/coursehub/coursehub-gateway/internal/api"
)

func newCoursesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Browse courses",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				courses, err := a.client.Courses.List(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), courses)
			},
		},
		&cobra.Command{
			Use:   "get [course-id]",
			Short: "Show one course",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				course, err := a.client.Courses.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), course)
			},
		},
		&cobra.Command{
			Use:   "featured",
			Short: "List the featured courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				courses, err := a.client.Courses.Featured(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), courses)
			},
		},
		&cobra.Command{
			Use:   "new",
			Short: "List the newest courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				courses, err := a.client.Courses.New(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), courses)
			},
		},
	)
	return cmd
}

func newLessonsCmd(a *app) *cobra.Command {
	var page api.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lessons, err := a.client.Lessons.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), lessons)
		},
	}
	list.Flags().IntVar(&page.Page, "page", 0, "page to show")
	list.Flags().IntVar(&page.Limit, "limit", 0, "lessons per page")

	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Browse lessons",
	}
	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "get [lesson-id]",
			Short: "Show one lesson",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lesson, err := a.client.Lessons.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), lesson)
			},
		},
	)
	return cmd
}

func newLecturesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lectures",
		Short: "Browse lectures",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [lecture-id]",
		Short: "Show one lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lecture, err := a.client.Lectures.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), lecture)
		},
	})
	return cmd
}

func newQuizCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Browse quizzes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [quiz-id]",
			Short: "Show one quiz",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				quiz, err := a.client.Quizzes.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), quiz)
			},
		},
		&cobra.Command{
			Use:   "questions [quiz-id]",
			Short: "List the questions of a quiz",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				questions, err := a.client.Quizzes.Questions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), questions)
			},
		},
	)
	return cmd
}
