package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"psyscreen/internal/email"
	"psyscreen/internal/repository"
	"psyscreen/internal/service"
)

// Interactive assessment runner against in-memory storage. Useful for trying
// instruments without Postgres, Redis, or a channel in front.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	logger := zap.NewNop()

	catalog, err := service.DefaultCatalog()
	if err != nil {
		log.Fatal(err)
	}

	store := repository.NewMemoryStore()
	sessions := service.NewMemorySessionStore(30 * time.Minute)
	results := service.NewResultStore(logger, store, store)
	notifier := email.NewDisabledNotifier("cli has no escalation contact")
	manager := service.NewSessionManager(logger, catalog, sessions, results, store, notifier)

	fmt.Println("Available instruments:")
	for i, in := range catalog.List() {
		fmt.Printf("[%d] %s: %s\n", i+1, in.ID, in.Title)
	}
	fmt.Print("Pick an instrument: ")
	choice, _ := reader.ReadString('\n')
	idx, err := strconv.Atoi(strings.TrimSpace(choice))
	instruments := catalog.List()
	if err != nil || idx < 1 || idx > len(instruments) {
		log.Fatal("invalid choice")
	}
	instrument := instruments[idx-1]

	step, err := manager.Start(ctx, "cli-user", "CLI User", instrument.ID)
	if err != nil {
		log.Fatal(err)
	}
	sessionID := step.SessionID

	for step.Next != nil {
		q := step.Next
		fmt.Printf("\n[%d/%d] %s\n", q.Number, q.Total, q.Prompt)
		for i, opt := range q.Options {
			fmt.Printf("  [%d] %s\n", i+1, opt.Label)
		}
		fmt.Print("Answer: ")
		line, _ := reader.ReadString('\n')
		pick, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || pick < 1 || pick > len(q.Options) {
			fmt.Println("Pick one of the listed numbers.")
			continue
		}

		step, err = manager.SubmitAnswer(ctx, sessionID, q.QuestionID, q.Options[pick-1].Value)
		if errors.Is(err, service.ErrInvalidOption) || errors.Is(err, service.ErrOutOfSequence) {
			fmt.Println("That answer was rejected, try again.")
			step, err = manager.CurrentPrompt(ctx, sessionID)
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	done := step.Done
	fmt.Printf("\nClassification: %s\n", done.Classification)
	if len(done.RiskFlags) > 0 {
		fmt.Printf("Risk flags: %s\n", strings.Join(done.RiskFlags, ", "))
	}
	fmt.Println("Recommendations:")
	for _, rec := range done.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	profile, err := store.GetProfile(ctx, "cli-user")
	if err == nil {
		fmt.Printf("\nTotal assessments for this run: %d\n", profile.TotalAssessments)
	}
}
