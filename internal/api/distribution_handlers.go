package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/distribution"
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
)

func (s *Server) registerDistributionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createDistribution",
		Method:        http.MethodPost,
		Path:          "/api/v1/distributions",
		Summary:       "Create distribution",
		Description:   "Creates a distribution of a song's parts across a roster",
		Tags:          []string{"Distributions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateDistribution)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSongDistributions",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}/distributions",
		Summary:     "List distributions",
		Description: "Lists the distributions of a song",
		Tags:        []string{"Distributions"},
	}, s.handleListSongDistributions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDistribution",
		Method:      http.MethodGet,
		Path:        "/api/v1/distributions/{id}",
		Summary:     "Get distribution",
		Tags:        []string{"Distributions"},
	}, s.handleGetDistribution)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameDistribution",
		Method:      http.MethodPatch,
		Path:        "/api/v1/distributions/{id}",
		Summary:     "Rename distribution",
		Tags:        []string{"Distributions"},
	}, s.handleRenameDistribution)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteDistribution",
		Method:        http.MethodDelete,
		Path:          "/api/v1/distributions/{id}",
		Summary:       "Delete distribution",
		Description:   "Deletes a distribution and its formations",
		Tags:          []string{"Distributions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteDistribution)

	huma.Register(s.api, huma.Operation{
		OperationID: "setAssignees",
		Method:      http.MethodPut,
		Path:        "/api/v1/distributions/{id}/assignees",
		Summary:     "Replace roster",
		Description: "Replaces the roster; mapping entries for removed performers are dropped",
		Tags:        []string{"Distributions"},
	}, s.handleSetAssignees)

	huma.Register(s.api, huma.Operation{
		OperationID: "assignParts",
		Method:      http.MethodPost,
		Path:        "/api/v1/distributions/{id}/assign",
		Summary:     "Assign parts",
		Description: "Maps parts to performers or ALL / NONE; an empty list clears them",
		Tags:        []string{"Distributions"},
	}, s.handleAssign)

	huma.Register(s.api, huma.Operation{
		OperationID: "applySuggestions",
		Method:      http.MethodPost,
		Path:        "/api/v1/distributions/{id}/suggestions",
		Summary:     "Apply suggestions",
		Description: "Maps every unmapped part to its recommended assignee",
		Tags:        []string{"Distributions"},
	}, s.handleApplySuggestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSnapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/distributions/{id}/snapshots",
		Summary:     "Playback snapshots",
		Description: "Bar, lyric, adlib and up-next snapshots keyed by 250ms tick",
		Tags:        []string{"Distributions"},
	}, s.handleGetSnapshots)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/distributions/{id}/progress",
		Summary:     "Progress",
		Description: "Sung duration and part count per performer",
		Tags:        []string{"Distributions"},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/distributions/{id}/progress/preview",
		Summary:     "Preview progress",
		Description: "Tallies an unsaved mapping against the stored song and roster",
		Tags:        []string{"Distributions"},
	}, s.handlePreviewProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCompleteness",
		Method:      http.MethodGet,
		Path:        "/api/v1/distributions/{id}/completeness",
		Summary:     "Completeness",
		Description: "Lists the parts the distribution leaves unassigned",
		Tags:        []string{"Distributions"},
	}, s.handleGetCompleteness)
}

// === DTOs ===

// AssigneeRequest is a roster member.
type AssigneeRequest struct {
	ID    string `json:"id" validate:"required,performer,max=64" doc:"Performer ID"`
	Name  string `json:"name" validate:"required,max=100" doc:"Display name"`
	Color string `json:"color,omitempty" validate:"omitempty,max=32" doc:"Display color"`
}

func toAssignees(in []AssigneeRequest) []domain.Assignee {
	out := make([]domain.Assignee, len(in))
	for i, a := range in {
		out[i] = domain.Assignee{ID: a.ID, Name: a.Name, Color: a.Color}
	}
	return out
}

// CreateDistributionRequest is the request body for creating a distribution.
type CreateDistributionRequest struct {
	SongID    string            `json:"songId" validate:"required" doc:"Song to distribute"`
	GroupID   string            `json:"groupId,omitempty" doc:"Performing group"`
	Name      string            `json:"name,omitempty" validate:"omitempty,max=200" doc:"Display name"`
	Assignees []AssigneeRequest `json:"assignees,omitempty" validate:"dive" doc:"Initial roster"`
}

// CreateDistributionInput wraps the create request for Huma.
type CreateDistributionInput struct {
	Body CreateDistributionRequest
}

// DistributionIDInput addresses a distribution.
type DistributionIDInput struct {
	ID string `path:"id" doc:"Distribution ID"`
}

// DistributionOutput wraps a distribution response for Huma.
type DistributionOutput struct {
	Body DistributionResponse
}

// ListDistributionsResponse lists a song's distributions.
type ListDistributionsResponse struct {
	Distributions []DistributionResponse `json:"distributions" doc:"Distributions of the song"`
}

// ListDistributionsOutput wraps the list response for Huma.
type ListDistributionsOutput struct {
	Body ListDistributionsResponse
}

// RenameDistributionInput wraps the rename request for Huma.
type RenameDistributionInput struct {
	ID   string `path:"id" doc:"Distribution ID"`
	Body struct {
		Name string `json:"name" validate:"max=200" doc:"New display name"`
	}
}

// SetAssigneesInput wraps the roster replacement for Huma.
type SetAssigneesInput struct {
	ID   string `path:"id" doc:"Distribution ID"`
	Body struct {
		Assignees []AssigneeRequest `json:"assignees" validate:"dive" doc:"New roster"`
	}
}

// AssignRequest maps parts to assignees.
type AssignRequest struct {
	PartIDs     []string `json:"partIds" validate:"min=1,dive,required" doc:"Parts to map"`
	AssigneeIDs []string `json:"assigneeIds" validate:"dive,assignee" doc:"Performers or ALL / NONE; empty clears"`
}

// AssignInput wraps the assign request for Huma.
type AssignInput struct {
	ID   string `path:"id" doc:"Distribution ID"`
	Body AssignRequest
}

// SuggestionsResponse is the distribution after suggestions were applied.
type SuggestionsResponse struct {
	Applied      int                  `json:"applied" doc:"Number of parts filled in"`
	Distribution DistributionResponse `json:"distribution" doc:"Updated distribution"`
}

// SuggestionsOutput wraps the suggestions response for Huma.
type SuggestionsOutput struct {
	Body SuggestionsResponse
}

// SnapshotsOutput wraps the snapshot set for Huma.
type SnapshotsOutput struct {
	Body *distribution.Result
}

// ProgressOutput wraps a progress tally for Huma.
type ProgressOutput struct {
	Body *distribution.Progress
}

// PreviewProgressInput carries an unsaved mapping.
type PreviewProgressInput struct {
	ID   string `path:"id" doc:"Distribution ID"`
	Body struct {
		Mapping domain.Mapping `json:"mapping" doc:"Assignee IDs per part ID"`
	}
}

// CompletenessOutput wraps a completeness report for Huma.
type CompletenessOutput struct {
	Body *distribution.Completeness
}

// === Handlers ===

func (s *Server) handleCreateDistribution(ctx context.Context, input *CreateDistributionInput) (*DistributionOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	dist, err := s.services.Distribution.CreateDistribution(ctx, service.CreateDistributionInput{
		SongID:    input.Body.SongID,
		GroupID:   input.Body.GroupID,
		Name:      input.Body.Name,
		Assignees: toAssignees(input.Body.Assignees),
	})
	if err != nil {
		return nil, err
	}
	return &DistributionOutput{Body: toDistributionResponse(dist)}, nil
}

func (s *Server) handleListSongDistributions(ctx context.Context, input *SongIDInput) (*ListDistributionsOutput, error) {
	dists, err := s.services.Distribution.ListDistributionsBySong(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	resp := ListDistributionsResponse{Distributions: make([]DistributionResponse, 0, len(dists))}
	for _, d := range dists {
		resp.Distributions = append(resp.Distributions, toDistributionResponse(d))
	}
	return &ListDistributionsOutput{Body: resp}, nil
}

func (s *Server) handleGetDistribution(ctx context.Context, input *DistributionIDInput) (*DistributionOutput, error) {
	dist, err := s.services.Distribution.GetDistribution(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DistributionOutput{Body: toDistributionResponse(dist)}, nil
}

func (s *Server) handleRenameDistribution(ctx context.Context, input *RenameDistributionInput) (*DistributionOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	dist, err := s.services.Distribution.Rename(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &DistributionOutput{Body: toDistributionResponse(dist)}, nil
}

func (s *Server) handleDeleteDistribution(ctx context.Context, input *DistributionIDInput) (*struct{}, error) {
	if err := s.services.Distribution.DeleteDistribution(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleSetAssignees(ctx context.Context, input *SetAssigneesInput) (*DistributionOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	dist, err := s.services.Distribution.SetAssignees(ctx, input.ID, toAssignees(input.Body.Assignees))
	if err != nil {
		return nil, err
	}
	return &DistributionOutput{Body: toDistributionResponse(dist)}, nil
}

func (s *Server) handleAssign(ctx context.Context, input *AssignInput) (*DistributionOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	dist, err := s.services.Distribution.Assign(ctx, input.ID, toIDs[domain.PartID](input.Body.PartIDs), input.Body.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	return &DistributionOutput{Body: toDistributionResponse(dist)}, nil
}

func (s *Server) handleApplySuggestions(ctx context.Context, input *DistributionIDInput) (*SuggestionsOutput, error) {
	dist, applied, err := s.services.Distribution.ApplySuggestions(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SuggestionsOutput{Body: SuggestionsResponse{Applied: applied, Distribution: toDistributionResponse(dist)}}, nil
}

func (s *Server) handleGetSnapshots(ctx context.Context, input *DistributionIDInput) (*SnapshotsOutput, error) {
	result, err := s.services.Distribution.Snapshots(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotsOutput{Body: result}, nil
}

func (s *Server) handleGetProgress(ctx context.Context, input *DistributionIDInput) (*ProgressOutput, error) {
	p, err := s.services.Distribution.Progress(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: p}, nil
}

func (s *Server) handlePreviewProgress(ctx context.Context, input *PreviewProgressInput) (*ProgressOutput, error) {
	p, err := s.services.Distribution.PreviewProgress(ctx, input.ID, input.Body.Mapping)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: p}, nil
}

func (s *Server) handleGetCompleteness(ctx context.Context, input *DistributionIDInput) (*CompletenessOutput, error) {
	c, err := s.services.Distribution.Completeness(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CompletenessOutput{Body: c}, nil
}
