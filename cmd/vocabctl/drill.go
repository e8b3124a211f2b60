package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vocabdrill/internal/models"
	"vocabdrill/internal/security"
	"vocabdrill/internal/study"
	"vocabdrill/internal/wordsource"
)

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Study a vocabulary or classroom in the terminal",
	Example: `  vocabctl drill --vocab 1
  vocabctl drill --classroom 2 --style flashcard --direction koreanToEnglish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		vocabID, _ := cmd.Flags().GetInt64("vocab")
		classroomID, _ := cmd.Flags().GetInt64("classroom")
		styleFlag, _ := cmd.Flags().GetString("style")
		dirFlag, _ := cmd.Flags().GetString("direction")
		batch, _ := cmd.Flags().GetInt("batch")

		kind, id := models.SourceVocab, vocabID
		if classroomID > 0 {
			kind, id = models.SourceClassroom, classroomID
		}
		if id <= 0 {
			return errors.New("one of --vocab or --classroom is required")
		}

		style, err := study.ParseStyle(styleFlag)
		if err != nil {
			return err
		}
		dir, err := study.ParseDirection(dirFlag)
		if err != nil {
			return err
		}

		words, err := wordsource.Load(cmd.Context(), wordsource.NewLocalSource(db), kind, id)
		if err != nil {
			return fmt.Errorf("failed to load words: %w", err)
		}

		session := study.NewSession(study.Options{
			ID:        security.GenerateSessionID(),
			Style:     style,
			Scheduler: &study.ManualScheduler{},
		})
		defer session.Close()
		if style == study.Flashcard {
			batch = study.BatchAll
		}
		if err := session.Initialize(wordsource.Shuffle(words), dir, batch); err != nil {
			return err
		}

		_, err = runDrill(session, cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}

func init() {
	drillCmd.Flags().Int64("vocab", 0, "Vocabulary id")
	drillCmd.Flags().Int64("classroom", 0, "Classroom id")
	drillCmd.Flags().String("style", string(study.Typed), "typed or flashcard")
	drillCmd.Flags().String("direction", string(study.EnglishToKorean), "englishToKorean or koreanToEnglish")
	drillCmd.Flags().Int("batch", study.BatchAll, "Number of words to study, 0 for all")
}

// runDrill walks the learner through an initialized session. It returns the
// final view; running out of input ends the drill early.
func runDrill(session *study.Session, in io.Reader, out io.Writer) (study.View, error) {
	scanner := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		view := session.View()
		if view.Empty {
			fmt.Fprintln(out, "No words to study.")
			return view, nil
		}
		if view.Completed {
			printSummary(out, view)
			return view, nil
		}

		card := view.Card
		fmt.Fprintf(out, "\n[%d/%d] %s", view.Index+1, view.Total, card.Prompt)
		if card.Hint != "" {
			fmt.Fprintf(out, "  (hint: %s)", card.Hint)
		}
		fmt.Fprintln(out)

		var err error
		if view.Style == study.Flashcard {
			err = drillFlashcard(session, out, readLine)
		} else {
			err = drillTyped(session, out, readLine, card.AnswerLength)
		}
		if errors.Is(err, io.EOF) {
			return session.View(), nil
		}
		if err != nil {
			return session.View(), err
		}
	}
}

func drillTyped(session *study.Session, out io.Writer, readLine func() (string, bool), length int) error {
	fmt.Fprint(out, "> ")
	line, ok := readLine()
	if !ok {
		return io.EOF
	}

	runes := []rune(line)
	inputs := make([]string, length)
	for i := range inputs {
		if i < len(runes) {
			inputs[i] = string(runes[i])
		}
	}
	if err := session.SetInputs(inputs); err != nil {
		return err
	}

	verdict, err := session.Check()
	if err != nil {
		return err
	}
	if verdict == study.VerdictCorrect {
		fmt.Fprintln(out, "Correct!")
	} else {
		if err := session.Reveal(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Incorrect. The answer is %s\n", session.View().Card.Answer)
	}
	return session.Advance()
}

func drillFlashcard(session *study.Session, out io.Writer, readLine func() (string, bool)) error {
	fmt.Fprint(out, "Press Enter to flip ")
	if _, ok := readLine(); !ok {
		return io.EOF
	}
	if err := session.Reveal(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", session.View().Card.Answer)

	for {
		fmt.Fprint(out, "Did you know it? [y/n] ")
		answer, ok := readLine()
		if !ok {
			return io.EOF
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return session.MarkKnown()
		case "n", "no":
			return session.MarkUnknown()
		}
	}
}

func printSummary(out io.Writer, view study.View) {
	s := view.Summary
	if s == nil {
		return
	}
	fmt.Fprintf(out, "\nDone! %d of %d correct (%d%%)\n", s.Correct, s.Total, s.CorrectPercent)
}
