package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

func (s *Server) registerFormationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFormation",
		Method:        http.MethodPost,
		Path:          "/api/v1/distributions/{id}/formations",
		Summary:       "Create formation",
		Description:   "Starts a formation with every performer lined up at timestamp 0",
		Tags:          []string{"Formations"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFormation)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFormations",
		Method:      http.MethodGet,
		Path:        "/api/v1/distributions/{id}/formations",
		Summary:     "List formations",
		Tags:        []string{"Formations"},
	}, s.handleListFormations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFormation",
		Method:      http.MethodGet,
		Path:        "/api/v1/formations/{id}",
		Summary:     "Get formation",
		Tags:        []string{"Formations"},
	}, s.handleGetFormation)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteFormation",
		Method:        http.MethodDelete,
		Path:          "/api/v1/formations/{id}",
		Summary:       "Delete formation",
		Tags:          []string{"Formations"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteFormation)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePosition",
		Method:      http.MethodPut,
		Path:        "/api/v1/formations/{id}/positions",
		Summary:     "Move performer",
		Description: "Sets one performer's stage position at one timestamp",
		Tags:        []string{"Formations"},
	}, s.handleUpdatePosition)

	huma.Register(s.api, huma.Operation{
		OperationID: "rekeyTimestamp",
		Method:      http.MethodPost,
		Path:        "/api/v1/formations/{id}/rekey",
		Summary:     "Move timestamp",
		Description: "Moves the positions at one timestamp to another free timestamp",
		Tags:        []string{"Formations"},
	}, s.handleRekey)

	huma.Register(s.api, huma.Operation{
		OperationID: "insertTimestamp",
		Method:      http.MethodPost,
		Path:        "/api/v1/formations/{id}/timestamps/{ms}",
		Summary:     "Insert timestamp",
		Description: "Adds a timestamp seeded from the closest earlier one",
		Tags:        []string{"Formations"},
	}, s.handleInsertTimestamp)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTimestamp",
		Method:      http.MethodDelete,
		Path:        "/api/v1/formations/{id}/timestamps/{ms}",
		Summary:     "Delete timestamp",
		Tags:        []string{"Formations"},
	}, s.handleDeleteTimestamp)

	huma.Register(s.api, huma.Operation{
		OperationID:   "copyPositions",
		Method:        http.MethodPost,
		Path:          "/api/v1/formations/{id}/copy",
		Summary:       "Copy positions",
		Description:   "Puts the positions at a timestamp on the formation's clipboard",
		Tags:          []string{"Formations"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleCopyPositions)

	huma.Register(s.api, huma.Operation{
		OperationID: "pastePositions",
		Method:      http.MethodPost,
		Path:        "/api/v1/formations/{id}/paste",
		Summary:     "Paste positions",
		Description: "Writes the clipboard to a timestamp, creating it if needed",
		Tags:        []string{"Formations"},
	}, s.handlePastePositions)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTimestamps",
		Method:      http.MethodGet,
		Path:        "/api/v1/formations/{id}/timestamps",
		Summary:     "List timestamps",
		Tags:        []string{"Formations"},
	}, s.handleListTimestamps)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextTimestamp",
		Method:      http.MethodGet,
		Path:        "/api/v1/formations/{id}/next",
		Summary:     "Next timestamp",
		Tags:        []string{"Formations"},
	}, s.handleNextTimestamp)

	huma.Register(s.api, huma.Operation{
		OperationID: "previousTimestamp",
		Method:      http.MethodGet,
		Path:        "/api/v1/formations/{id}/previous",
		Summary:     "Previous timestamp",
		Tags:        []string{"Formations"},
	}, s.handlePreviousTimestamp)
}

// === DTOs ===

// FormationIDInput addresses a formation.
type FormationIDInput struct {
	ID string `path:"id" doc:"Formation ID"`
}

// FormationOutput wraps a formation response for Huma.
type FormationOutput struct {
	Body FormationResponse
}

// ListFormationsResponse lists a distribution's formations.
type ListFormationsResponse struct {
	Formations []FormationResponse `json:"formations" doc:"Formations of the distribution"`
}

// ListFormationsOutput wraps the list response for Huma.
type ListFormationsOutput struct {
	Body ListFormationsResponse
}

// UpdatePositionRequest places one performer.
type UpdatePositionRequest struct {
	Timestamp  int64  `json:"timestamp" validate:"gte=0" doc:"Timestamp (ms)"`
	AssigneeID string `json:"assigneeId" validate:"required,performer" doc:"Performer ID"`
	X          int    `json:"x" doc:"Stage X coordinate"`
	Y          int    `json:"y" doc:"Stage Y coordinate"`
}

// UpdatePositionInput wraps the position update for Huma.
type UpdatePositionInput struct {
	ID   string `path:"id" doc:"Formation ID"`
	Body UpdatePositionRequest
}

// RekeyRequest moves a timestamp.
type RekeyRequest struct {
	From int64 `json:"from" validate:"gte=0" doc:"Existing timestamp (ms)"`
	To   int64 `json:"to" validate:"gte=0" doc:"Free target timestamp (ms)"`
}

// RekeyInput wraps the rekey request for Huma.
type RekeyInput struct {
	ID   string `path:"id" doc:"Formation ID"`
	Body RekeyRequest
}

// TimestampPathInput addresses a timestamp of a formation.
type TimestampPathInput struct {
	ID string `path:"id" doc:"Formation ID"`
	MS int64  `path:"ms" minimum:"0" doc:"Timestamp (ms)"`
}

// ClipboardRequest names the timestamp to copy from or paste to.
type ClipboardRequest struct {
	Timestamp int64 `json:"timestamp" validate:"gte=0" doc:"Timestamp (ms)"`
}

// ClipboardInput wraps a clipboard request for Huma.
type ClipboardInput struct {
	ID   string `path:"id" doc:"Formation ID"`
	Body ClipboardRequest
}

// TimestampsResponse lists timestamps in ascending order.
type TimestampsResponse struct {
	Timestamps []int64 `json:"timestamps" doc:"Timestamps (ms), ascending"`
}

// TimestampsOutput wraps the timestamp list for Huma.
type TimestampsOutput struct {
	Body TimestampsResponse
}

// NavigateInput asks for the neighbour of a timestamp.
type NavigateInput struct {
	ID string `path:"id" doc:"Formation ID"`
	MS int64  `query:"ms" minimum:"0" doc:"Reference timestamp (ms)"`
}

// NavigateResponse is the neighbouring timestamp, if any.
type NavigateResponse struct {
	Timestamp int64 `json:"timestamp" doc:"Neighbouring timestamp (ms)"`
	Found     bool  `json:"found" doc:"False when there is no neighbour in that direction"`
}

// NavigateOutput wraps the navigation response for Huma.
type NavigateOutput struct {
	Body NavigateResponse
}

// === Handlers ===

func (s *Server) handleCreateFormation(ctx context.Context, input *DistributionIDInput) (*FormationOutput, error) {
	f, err := s.services.Formation.CreateFormation(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleListFormations(ctx context.Context, input *DistributionIDInput) (*ListFormationsOutput, error) {
	formations, err := s.services.Formation.ListFormationsByDistribution(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	resp := ListFormationsResponse{Formations: make([]FormationResponse, 0, len(formations))}
	for _, f := range formations {
		resp.Formations = append(resp.Formations, toFormationResponse(f))
	}
	return &ListFormationsOutput{Body: resp}, nil
}

func (s *Server) handleGetFormation(ctx context.Context, input *FormationIDInput) (*FormationOutput, error) {
	f, err := s.services.Formation.GetFormation(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleDeleteFormation(ctx context.Context, input *FormationIDInput) (*struct{}, error) {
	if err := s.services.Formation.DeleteFormation(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleUpdatePosition(ctx context.Context, input *UpdatePositionInput) (*FormationOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	b := input.Body
	f, err := s.services.Formation.UpdatePosition(ctx, input.ID, b.Timestamp, b.AssigneeID, domain.Position{X: b.X, Y: b.Y})
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleRekey(ctx context.Context, input *RekeyInput) (*FormationOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	f, err := s.services.Formation.Rekey(ctx, input.ID, input.Body.From, input.Body.To)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleInsertTimestamp(ctx context.Context, input *TimestampPathInput) (*FormationOutput, error) {
	f, err := s.services.Formation.InsertTimestamp(ctx, input.ID, input.MS)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleDeleteTimestamp(ctx context.Context, input *TimestampPathInput) (*FormationOutput, error) {
	f, err := s.services.Formation.DeleteTimestamp(ctx, input.ID, input.MS)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleCopyPositions(ctx context.Context, input *ClipboardInput) (*struct{}, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return nil, s.services.Formation.Copy(ctx, input.ID, input.Body.Timestamp)
}

func (s *Server) handlePastePositions(ctx context.Context, input *ClipboardInput) (*FormationOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	f, err := s.services.Formation.Paste(ctx, input.ID, input.Body.Timestamp)
	if err != nil {
		return nil, err
	}
	return &FormationOutput{Body: toFormationResponse(f)}, nil
}

func (s *Server) handleListTimestamps(ctx context.Context, input *FormationIDInput) (*TimestampsOutput, error) {
	ts, err := s.services.Formation.Timestamps(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TimestampsOutput{Body: TimestampsResponse{Timestamps: ts}}, nil
}

func (s *Server) handleNextTimestamp(ctx context.Context, input *NavigateInput) (*NavigateOutput, error) {
	next, ok, err := s.services.Formation.Next(ctx, input.ID, input.MS)
	if err != nil {
		return nil, err
	}
	return &NavigateOutput{Body: NavigateResponse{Timestamp: next, Found: ok}}, nil
}

func (s *Server) handlePreviousTimestamp(ctx context.Context, input *NavigateInput) (*NavigateOutput, error) {
	prev, ok, err := s.services.Formation.Previous(ctx, input.ID, input.MS)
	if err != nil {
		return nil, err
	}
	return &NavigateOutput{Body: NavigateResponse{Timestamp: prev, Found: ok}}, nil
}
