package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/client/services"
)

// Add collects one analysis record interactively, encrypts it and uploads
// the ciphertext form.
func (a *App) Add(ctx context.Context) error {
	if !a.isUnlocked() {
		fmt.Println("unlock the session first")
		return services.ErrNotUnlocked
	}

	inputType, err := a.getInputType()
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Paste the analyzed content:", os.Stdout)
	if err != nil {
		return err
	}

	analysisContext, err := GetSimpleText(a.reader, "Context (optional, Enter to skip)", os.Stdout)
	if err != nil {
		return err
	}

	verdict, err := GetSimpleText(a.reader, "Is it phishing? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	probabilityText, err := GetSimpleText(a.reader, "Probability (0..1)", os.Stdout)
	if err != nil {
		return err
	}
	probability, err := strconv.ParseFloat(probabilityText, 64)
	if err != nil {
		fmt.Println(color.RedString("✗")+" not a number:", probabilityText)
		return err
	}

	analysis := &models.Analysis{
		UserEmail:       a.identity.Email,
		InputType:       inputType,
		InputContent:    content,
		AnalysisContext: analysisContext,
		MLResult: &models.MLResult{
			IsPhishing:          verdict == "y" || verdict == "yes",
			PhishingProbability: probability,
		},
	}

	encrypted, err := a.session.EncryptAnalysis(ctx, analysis)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			fmt.Println(color.RedString("✗") + " content is required")
		}
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Uploading..."
	s.Start()
	err = a.apiClient.SaveAnalysis(ctx, encrypted)
	s.Stop()

	if err != nil {
		fmt.Println(color.RedString("✗")+" upload failed:", err)
		return err
	}
	fmt.Println(color.GreenString("✓")+" saved analysis", encrypted.ID)
	return nil
}

// List fetches a page of encrypted records, decrypts them and prints a short
// line per record. Records that fail to decrypt are reported and skipped.
func (a *App) List(ctx context.Context) error {
	if !a.isUnlocked() {
		fmt.Println("unlock the session first")
		return services.ErrNotUnlocked
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching analyses..."
	s.Start()
	page, err := a.apiClient.ListAnalyses(ctx, a.config.RemotePageSize)
	s.Stop()

	if err != nil {
		fmt.Println(color.RedString("✗")+" fetch failed:", err)
		return err
	}
	if len(page) == 0 {
		fmt.Println("no analyses yet")
		return nil
	}

	for i := range page {
		analysis, err := a.session.DecryptAnalysis(ctx, &page[i])
		if err != nil {
			fmt.Printf("%s  %s  %s\n", page[i].ID, page[i].InputType,
				color.RedString("cannot decrypt"))
			continue
		}
		fmt.Printf("%s  %s  %s  %s\n",
			analysis.ID,
			analysis.InputType,
			analysis.CreatedAt.Format(time.DateTime),
			formatVerdict(analysis.MLResult))
	}
	return nil
}

// Show fetches and decrypts a single record by ID and prints every field.
func (a *App) Show(ctx context.Context) error {
	if !a.isUnlocked() {
		fmt.Println("unlock the session first")
		return services.ErrNotUnlocked
	}

	id, err := GetSimpleText(a.reader, "Enter record id to show", os.Stdout)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching..."
	s.Start()
	page, err := a.apiClient.ListAnalyses(ctx, a.config.RemotePageSize)
	s.Stop()

	if err != nil {
		fmt.Println(color.RedString("✗")+" fetch failed:", err)
		return err
	}

	for i := range page {
		if page[i].ID != id {
			continue
		}
		analysis, err := a.session.DecryptAnalysis(ctx, &page[i])
		if err != nil {
			fmt.Println(color.RedString("✗")+" cannot decrypt:", err)
			return err
		}
		fmt.Println("ID:", analysis.ID)
		fmt.Println("Type:", analysis.InputType)
		fmt.Println("User:", analysis.UserEmail)
		fmt.Println("Created:", analysis.CreatedAt.Format(time.DateTime))
		fmt.Println("Verdict:", formatVerdict(analysis.MLResult))
		if analysis.AnalysisContext != "" {
			fmt.Println("Context:", analysis.AnalysisContext)
		}
		fmt.Println("Content:")
		fmt.Println(analysis.InputContent)
		return nil
	}

	fmt.Println("no record with id", id)
	return nil
}

func (a *App) getInputType() (models.InputType, error) {
	answer, err := GetSimpleText(a.reader, "Input type (email/url/text)", os.Stdout)
	if err != nil {
		return "", err
	}
	switch models.InputType(answer) {
	case models.InputTypeEmail, models.InputTypeURL, models.InputTypeText:
		return models.InputType(answer), nil
	}
	return "", fmt.Errorf("unknown input type: %q", answer)
}

func formatVerdict(r *models.MLResult) string {
	if r == nil {
		return "no verdict"
	}
	if r.IsPhishing {
		return color.RedString("phishing %.0f%%", r.PhishingProbability*100)
	}
	return color.GreenString("clean %.0f%%", (1-r.PhishingProbability)*100)
}
