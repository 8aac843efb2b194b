// Package cli implements the interactive terminal menu and the text output
// shared by the one-shot commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lk-schedule/schedule-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHELL
// Numbered menu over the three read queries. Runs until "0" or end of input.
// ══════════════════════════════════════════════════════════════════════════════

const (
	menuText = "Выберите действие:\n" +
		"1 - Вводим день - получаем расписание\n" +
		"2 - Вводим предмет - получаем подробности\n" +
		"3 - Вводим преподавателя - получаем предметы\n" +
		"0 - Выход\n"

	promptChoice  = "Введите номер действия: "
	promptDay     = "Введите интересующий день в формате год-месяц-число (Пример: 2025-02-26)\n"
	promptSubject = "Введите название дисциплины (Пример: Технологии и методы программирования)\n"
	promptTeacher = "Введите имя преподавателя (Пример: Панфилова Ирина Евгеньевна)\n"

	msgExit          = "Выход из программы."
	msgInvalidChoice = "Неверный выбор. Пожалуйста, выберите 1, 2, 3 или 0 для выхода."
	msgNotANumber    = "Пожалуйста, введите число."
)

// Menu choices.
const (
	choiceExit    = 0
	choiceDay     = 1
	choiceSubject = 2
	choiceTeacher = 3
)

// Queries bundles the read handlers the shell dispatches to.
type Queries struct {
	Day     *query.GetDayScheduleHandler
	Subject *query.GetSubjectLessonsHandler
	Teacher *query.GetTeacherLessonsHandler
}

// ShellConfig contains configuration for the Shell.
type ShellConfig struct {
	// Logger receives query failures in addition to the on-screen message.
	Logger *slog.Logger
}

// Shell reads menu choices from in and writes results to out.
type Shell struct {
	in        *bufio.Scanner
	out       io.Writer
	queries   Queries
	presenter *Presenter
	logger    *slog.Logger
}

// NewShell creates a new Shell.
func NewShell(in io.Reader, out io.Writer, queries Queries, config ShellConfig) *Shell {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Shell{
		in:        bufio.NewScanner(in),
		out:       out,
		queries:   queries,
		presenter: NewPresenter(out),
		logger:    config.Logger,
	}
}

// Run prints the menu once and serves choices until exit, end of input or
// context cancellation. Query failures are reported and the loop goes on.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprint(s.out, menuText+"\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok := s.prompt(promptChoice)
		if !ok {
			return s.in.Err()
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(s.out, msgNotANumber)
			continue
		}

		switch choice {
		case choiceDay:
			date, ok := s.prompt(promptDay)
			if !ok {
				return s.in.Err()
			}
			s.showDay(ctx, date)
		case choiceSubject:
			subject, ok := s.prompt(promptSubject)
			if !ok {
				return s.in.Err()
			}
			s.showSubject(ctx, subject)
		case choiceTeacher:
			teacher, ok := s.prompt(promptTeacher)
			if !ok {
				return s.in.Err()
			}
			s.showTeacher(ctx, teacher)
		case choiceExit:
			fmt.Fprintln(s.out, msgExit)
			return nil
		default:
			fmt.Fprintln(s.out, msgInvalidChoice)
		}
	}
}

// prompt writes text and reads one line without its line terminator.
func (s *Shell) prompt(text string) (string, bool) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSuffix(s.in.Text(), "\r"), true
}

func (s *Shell) showDay(ctx context.Context, date string) {
	res, err := s.queries.Day.Handle(ctx, query.GetDayScheduleQuery{Date: date})
	if err != nil {
		s.fail("day", err)
		return
	}
	s.presenter.Day(res)
}

func (s *Shell) showSubject(ctx context.Context, subject string) {
	res, err := s.queries.Subject.Handle(ctx, query.GetSubjectLessonsQuery{Subject: subject})
	if err != nil {
		s.fail("subject", err)
		return
	}
	s.presenter.Subject(res)
}

func (s *Shell) showTeacher(ctx context.Context, teacher string) {
	res, err := s.queries.Teacher.Handle(ctx, query.GetTeacherLessonsQuery{Teacher: teacher})
	if err != nil {
		s.fail("teacher", err)
		return
	}
	s.presenter.Teacher(res)
}

func (s *Shell) fail(action string, err error) {
	s.logger.Error("shell query failed", "action", action, "error", err)
	s.presenter.Error(err)
}
