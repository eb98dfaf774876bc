package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/qflow/internal/intake"
	"github.com/Veraticus/qflow/internal/model"
)

// ErrInputTerminated is returned when the input stream ends mid-review.
var ErrInputTerminated = errors.New("input terminated")

// ReviewStats counts what happened to the items of one review.
type ReviewStats struct {
	Total     int
	Accepted  int
	Corrected int
	Removed   int
	Duration  time.Duration
}

// Reviewer walks a human through the detected items of an intake session.
type Reviewer struct {
	startTime   time.Time
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	catalog     model.ServiceCatalog
	directory   model.BranchDirectory
	stats       ReviewStats
}

// NewReviewer creates a reviewer reading answers from reader.
func NewReviewer(reader io.Reader, writer io.Writer, catalog model.ServiceCatalog, directory model.BranchDirectory) *Reviewer {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Reviewer{
		reader:    NewNonBlockingReader(reader),
		writer:    writer,
		catalog:   catalog,
		directory: directory,
		startTime: time.Now(),
	}
}

// Stats returns the counters of the review so far.
func (r *Reviewer) Stats() ReviewStats {
	stats := r.stats
	stats.Duration = time.Since(r.startTime)
	return stats
}

// ReviewHeader confirms or corrects the detected branch and date. Both must
// be set before the header can be accepted.
func (r *Reviewer) ReviewHeader(ctx context.Context, session *intake.Session) error {
	for {
		header := session.Header()
		if _, err := fmt.Fprintln(r.writer, RenderBox("Booking Details", r.formatHeader(header))); err != nil {
			return fmt.Errorf("failed to write header box: %w", err)
		}

		r.println("  [Y] Looks right")
		r.println("  [B] Change branch")
		r.println("  [D] Change date")
		r.println()

		choice, err := r.promptChoice(ctx, "Choice", []string{"y", "b", "d"})
		if err != nil {
			return err
		}

		switch choice {
		case "y":
			if header.Branch == "" || header.Date == "" {
				r.println(FormatError("Branch and date are both required."))
				continue
			}
			return nil
		case "b":
			labels := make([]string, len(r.directory))
			codes := make([]string, len(r.directory))
			for i, b := range r.directory {
				labels[i] = fmt.Sprintf("%s (%s)", b.Name, b.Code)
				codes[i] = b.Code
			}
			code, err := r.promptFromList(ctx, "Branch code", labels, codes)
			if err != nil {
				return err
			}
			header.Branch = code
			session.SetHeader(header)
		case "d":
			date, err := r.promptDate(ctx)
			if err != nil {
				return err
			}
			header.Date = date
			session.SetHeader(header)
		}
	}
}

// Review goes through every item until each one is either verified or
// removed. Program and sub-service corrections are learned by the session.
func (r *Reviewer) Review(ctx context.Context, session *intake.Session) error {
	r.stats.Total = session.Len()
	if r.stats.Total == 0 {
		r.println(FormatWarning("No booking lines were detected."))
		return nil
	}
	r.initProgressBar(r.stats.Total)

	index := 0
	corrected := false
	for index < session.Len() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item := session.Items()[index]
		title := fmt.Sprintf("Item %d of %d", index+1, session.Len())
		if _, err := fmt.Fprintln(r.writer, RenderBox(title, r.formatItem(item))); err != nil {
			return fmt.Errorf("failed to write item box: %w", err)
		}

		validChoices := []string{"p", "q", "d"}
		r.println(FormatPrompt("Options:"))
		if item.IsComplete() {
			r.printf("  [A] Accept %s\n", SuccessStyle.Render(item.Program+" / "+item.Sub))
			validChoices = append(validChoices, "a")
		}
		r.println("  [P] Change program")
		if item.Program != "" {
			r.println("  [S] Change sub-service")
			validChoices = append(validChoices, "s")
		}
		r.println("  [Q] Change quantity")
		r.println("  [D] Delete this line")
		r.println()

		choice, err := r.promptChoice(ctx, "Choice", validChoices)
		if err != nil {
			return err
		}

		switch choice {
		case "a":
			if err := session.SetVerified(index, true); err != nil {
				return err
			}
			if corrected {
				r.stats.Corrected++
			} else {
				r.stats.Accepted++
			}
			r.updateProgress()
			index++
			corrected = false
		case "p":
			names := r.catalog.Names()
			program, err := r.promptFromList(ctx, "Program", names, names)
			if err != nil {
				return err
			}
			if err := session.SetProgram(ctx, index, program); err != nil {
				r.warnLearning(err)
			}
			corrected = true
		case "s":
			subs, _ := r.catalog.Lookup(item.Program)
			sub, err := r.promptFromList(ctx, "Sub-service", subs, subs)
			if err != nil {
				return err
			}
			if err := session.SetSub(ctx, index, sub); err != nil {
				r.warnLearning(err)
			}
			corrected = true
		case "q":
			que, err := r.promptQuantity(ctx)
			if err != nil {
				return err
			}
			if err := session.SetQue(index, que); err != nil {
				return err
			}
		case "d":
			if err := session.Remove(index); err != nil {
				return err
			}
			r.stats.Removed++
			r.updateProgress()
			corrected = false
		}
	}

	return nil
}

// ConfirmSubmit shows the per-label totals and asks whether to submit.
func (r *Reviewer) ConfirmSubmit(ctx context.Context, session *intake.Session) (bool, error) {
	if err := session.ReadyToConfirm(); err != nil {
		r.println(FormatError(err.Error()))
		return false, err
	}

	header := session.Header()
	lines, total := session.Summary()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s\n\n", BranchIcon, r.branchLabel(header.Branch), header.Date)
	for _, line := range lines {
		fmt.Fprintf(&b, "  • %s: %d\n", line.Label, line.Que)
	}
	fmt.Fprintf(&b, "\n%s", BoldStyle.Render(fmt.Sprintf("Total: %d", total)))

	if _, err := fmt.Fprintln(r.writer, RenderBox("Ready to submit", b.String())); err != nil {
		return false, fmt.Errorf("failed to write summary box: %w", err)
	}

	choice, err := r.promptChoice(ctx, "Submit? [y/n]", []string{"y", "n"})
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

// ShowCompletion displays the review summary to the user.
func (r *Reviewer) ShowCompletion() {
	if r.progressBar != nil {
		if err := r.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}

	stats := r.Stats()
	summary := fmt.Sprintf("%s Review Complete!\n\n", QueueIcon) +
		fmt.Sprintf("%s Statistics:\n", ChartIcon) +
		fmt.Sprintf("  • Lines detected: %d\n", stats.Total) +
		fmt.Sprintf("  • Accepted as detected: %d\n", stats.Accepted) +
		fmt.Sprintf("  • Corrected: %d\n", stats.Corrected) +
		fmt.Sprintf("  • Deleted: %d\n", stats.Removed) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Second))

	if _, err := fmt.Fprintln(r.writer, RenderBox("Review Complete", summary)); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (r *Reviewer) initProgressBar(total int) {
	r.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Checking bookings...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (r *Reviewer) updateProgress() {
	if r.progressBar != nil {
		if err := r.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		r.println()
	}
}

func (r *Reviewer) formatItem(item model.DetectedItem) string {
	var b strings.Builder

	phrase := item.OriginalName
	if phrase == "" {
		phrase = SubtleStyle.Render("(entered by hand)")
	}
	fmt.Fprintf(&b, "Pasted:      %s\n", phrase)
	fmt.Fprintf(&b, "Program:     %s\n", orUnset(item.Program))
	fmt.Fprintf(&b, "Sub-service: %s\n", orUnset(item.Sub))
	fmt.Fprintf(&b, "Quantity:    %d", item.Que)

	if item.Program != "" {
		if subs, ok := r.catalog.Lookup(item.Program); ok && len(subs) > 0 {
			fmt.Fprintf(&b, "\n\n%s", SubtleStyle.Render("Known sub-services: "+strings.Join(subs, ", ")))
		}
	}
	return b.String()
}

func (r *Reviewer) formatHeader(header model.HeaderData) string {
	branch := orUnset(header.Branch)
	if header.Branch != "" {
		branch = r.branchLabel(header.Branch)
	}
	return fmt.Sprintf("%s Branch: %s\n%s Date:   %s", BranchIcon, branch, QueueIcon, orUnset(header.Date))
}

func (r *Reviewer) branchLabel(code string) string {
	if name, ok := r.directory.NameFor(code); ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

func orUnset(value string) string {
	if value == "" {
		return WarningStyle.Render("(not detected)")
	}
	return value
}

func (r *Reviewer) warnLearning(err error) {
	slog.Warn("Correction applied but not remembered", "error", err)
	r.println(FormatWarning("Correction applied but could not be remembered: " + err.Error()))
}

func (r *Reviewer) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	line, err := r.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputTerminated
		}
		if errors.Is(err, ErrInputCancelled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return line, nil
}

func (r *Reviewer) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := r.readLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		r.println(FormatError("Invalid choice. Please try again."))
	}
}

// promptFromList accepts either the number of a listed option or free text.
// Text matching an option label case-insensitively selects that option.
func (r *Reviewer) promptFromList(ctx context.Context, prompt string, labels, values []string) (string, error) {
	if len(labels) > 0 {
		r.println()
		for i, label := range labels {
			r.printf("  %2d. %s\n", i+1, label)
		}
		r.println()
	}

	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := r.readLine(ctx)
		if err != nil {
			return "", err
		}

		if input == "" {
			r.println(FormatError("A value is required. Please try again."))
			continue
		}

		if n, err := strconv.Atoi(input); err == nil {
			if n >= 1 && n <= len(values) {
				return values[n-1], nil
			}
			r.println(FormatError("No option with that number. Please try again."))
			continue
		}

		for i, label := range labels {
			if strings.EqualFold(label, input) || strings.EqualFold(values[i], input) {
				return values[i], nil
			}
		}
		return input, nil
	}
}

func (r *Reviewer) promptQuantity(ctx context.Context) (int, error) {
	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt("Quantity")); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := r.readLine(ctx)
		if err != nil {
			return 0, err
		}

		que, err := strconv.Atoi(input)
		if err != nil || que < 1 {
			r.println(FormatError("Quantity must be a whole number of at least 1."))
			continue
		}
		return que, nil
	}
}

func (r *Reviewer) promptDate(ctx context.Context) (string, error) {
	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt("Date (YYYY-MM-DD)")); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := r.readLine(ctx)
		if err != nil {
			return "", err
		}

		if _, err := time.Parse(time.DateOnly, input); err != nil {
			r.println(FormatError("Dates look like 2025-03-01. Please try again."))
			continue
		}
		return input, nil
	}
}

func (r *Reviewer) println(args ...any) {
	if _, err := fmt.Fprintln(r.writer, args...); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

func (r *Reviewer) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.writer, format, args...); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
