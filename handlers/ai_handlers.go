package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cafestock/config"
	"cafestock/models"
)

// HandleGetInsights asks Gemini for a short narrative summary of the current
// recommendations and audit state.
// POST /api/v1/insights
func HandleGetInsights(c *fiber.Ctx) error {
	apiKey := config.AppConfig.GeminiAPIKey
	if apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "AI insights are not configured"})
	}

	mu.RLock()
	recommendations := eng.Recommendations(time.Now())
	report := eng.Audit()
	mu.RUnlock()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Printf("❌ [INSIGHTS] Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to initialize Gemini client"})
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro-latest")
	resp, err := model.GenerateContent(ctx, genai.Text(buildInsightPrompt(recommendations, report)))
	if err != nil {
		log.Printf("❌ [INSIGHTS] Error generating content: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to generate insights"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": resp})
}

func buildInsightPrompt(recommendations []models.OrderRecommendation, report models.AuditReport) string {
	var b strings.Builder
	b.WriteString("You are an inventory advisor for a small cafe. ")
	b.WriteString("Summarize the purchasing situation in a few short paragraphs, ")
	b.WriteString("leading with anything critical. Data follows.\n\nRecommendations:\n")
	for _, rec := range recommendations {
		fmt.Fprintf(&b, "- %s: stock %.1f, recommend %.1f (%s), est. $%.2f, %s\n",
			rec.ItemName, rec.CurrentStock, rec.RecommendedQuantity, rec.UrgencyLevel, rec.EstimatedCost, rec.Reasoning)
	}
	fmt.Fprintf(&b, "\nAudit: clean=%t, issue counts by severity: %v\n", report.Clean, report.SeverityCounts)
	return b.String()
}
