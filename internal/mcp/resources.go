// ABOUTME: MCP resource implementations for the fitness diaries.
// ABOUTME: Provides fitness://today and fitness://week for the configured user.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/fitness/internal/diary"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

const (
	todayURI = "fitness://today"
	weekURI  = "fitness://week"
)

func (s *Server) registerResources() {
	// fitness://today - every diary logged today plus the caloric balance
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Diaries",
		Description: "Meal, exercise and weight diaries for today with the caloric balance",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// fitness://week - trailing seven day rollups
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         weekURI,
		Name:        "Weekly Summary",
		Description: "Weekly nutrition, exercise and weight history for the last seven days",
		MIMEType:    "application/json",
	}, s.handleWeekResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := s.tracker.Today()
	result, err := s.dayDiaries(ctx, s.userID, today, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read diaries: %w", err)
	}

	balance, err := s.tracker.CaloricBalance(ctx, s.userID, today)
	switch {
	case errors.Is(err, diary.ErrNotFound):
		result["caloric_balance"] = nil
	case err != nil:
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	default:
		result["caloric_balance"] = balance
	}

	return jsonResource(todayURI, result)
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	var (
		nutrition *diary.WeeklyNutrition
		exercise  *diary.WeeklyExercise
		weight    *diary.WeightHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nutrition, err = s.tracker.WeeklyNutrition(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		exercise, err = s.tracker.WeeklyExercise(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		weight, err = s.tracker.WeightHistory(gctx, s.userID, "1w")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build weekly summary: %w", err)
	}

	return jsonResource(weekURI, map[string]any{
		"user_id":   s.userID,
		"nutrition": nutrition,
		"exercise":  exercise,
		"weight":    weight,
	})
}
