package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/lyrics"
	"github.com/lyricsplit/lyricsplit-server/internal/songedit"
)

func (s *Server) registerSongEditRoutes() {
	huma.Register(s.api, editOperation("addSection", http.MethodPost, "/sections",
		"Add section", "Adds a section seeded with one empty line and part"), s.handleAddSection)
	huma.Register(s.api, editOperation("addLine", http.MethodPost, "/sections/{sectionId}/lines",
		"Add line", "Adds a line seeded with one empty part"), s.handleAddLine)
	huma.Register(s.api, editOperation("addPart", http.MethodPost, "/lines/{lineId}/parts",
		"Add part", "Adds an untimed, unassigned part"), s.handleAddPart)

	huma.Register(s.api, editOperation("appendSongText", http.MethodPost, "/text",
		"Append lyrics", "Parses lyric text into new sections at the end of the song"), s.handleAppendSongText)
	huma.Register(s.api, editOperation("appendSectionText", http.MethodPost, "/sections/{sectionId}/text",
		"Append lines", "Parses lyric text into new lines at the end of a section"), s.handleAppendSectionText)
	huma.Register(s.api, editOperation("appendLineText", http.MethodPost, "/lines/{lineId}/text",
		"Append parts", "Splits text on | into new parts at the end of a line"), s.handleAppendLineText)

	huma.Register(s.api, editOperation("deletePart", http.MethodDelete, "/parts/{partId}",
		"Delete part", "Removes a part from its line and the song"), s.handleDeletePart)
	huma.Register(s.api, editOperation("deleteLine", http.MethodDelete, "/lines/{lineId}",
		"Delete line", "Removes an empty line; a line that still has parts is a precondition failure"), s.handleDeleteLine)
	huma.Register(s.api, editOperation("deleteSection", http.MethodDelete, "/sections/{sectionId}",
		"Delete section", "Removes an empty section, or with cascade=true the section with all its lines and parts"), s.handleDeleteSection)

	huma.Register(s.api, editOperation("mergeParts", http.MethodPost, "/parts/merge",
		"Merge parts", "Merges parts into the earliest one, joining their text in time order"), s.handleMergeParts)
	huma.Register(s.api, editOperation("mergeLines", http.MethodPost, "/lines/merge",
		"Merge lines", "Moves every part onto the earliest line and deletes the others"), s.handleMergeLines)
	huma.Register(s.api, editOperation("mergeSections", http.MethodPost, "/sections/merge",
		"Merge sections", "Moves every line onto the earliest section and deletes the others"), s.handleMergeSections)

	huma.Register(s.api, editOperation("movePart", http.MethodPost, "/parts/{partId}/move",
		"Move part", "Moves a part to another line"), s.handleMovePart)
	huma.Register(s.api, editOperation("moveLines", http.MethodPost, "/lines/move",
		"Move lines", "Moves lines to another section; emptied sections are deleted"), s.handleMoveLines)
	huma.Register(s.api, editOperation("moveSection", http.MethodPost, "/sections/{sectionId}/move",
		"Move section", "Moves a section to another position in the song"), s.handleMoveSection)
	huma.Register(s.api, editOperation("convertPartToLine", http.MethodPost, "/parts/{partId}/convert",
		"Convert part to line", "Moves a part into a brand-new line of the same section"), s.handleConvertPart)

	huma.Register(s.api, editOperation("splitPart", http.MethodPost, "/parts/{partId}/split",
		"Split part", "Splits a part into consecutive parts, dividing its time range by text length"), s.handleSplitPart)
	huma.Register(s.api, editOperation("splitSection", http.MethodPost, "/sections/{sectionId}/split",
		"Split section", "Moves the lines from lineId onward into a new section right after"), s.handleSplitSection)

	huma.Register(s.api, editOperation("sortSong", http.MethodPost, "/sort",
		"Sort song", "Orders every section, line and part by start time"), s.handleSortSong)
	huma.Register(s.api, editOperation("sortSection", http.MethodPost, "/sections/{sectionId}/sort",
		"Sort section", "Orders a section's lines by start time"), s.handleSortSection)
	huma.Register(s.api, editOperation("sortLine", http.MethodPost, "/lines/{lineId}/sort",
		"Sort line", "Orders a line's parts by start time"), s.handleSortLine)
	huma.Register(s.api, editOperation("renumberSections", http.MethodPost, "/renumber",
		"Renumber sections", "Recomputes section labels such as CHORUS II.A"), s.handleRenumber)
	huma.Register(s.api, editOperation("nudgeSong", http.MethodPost, "/nudge",
		"Nudge timings", "Shifts timed parts by a signed number of milliseconds"), s.handleNudge)

	huma.Register(s.api, editOperation("batchUpdate", http.MethodPatch, "/content",
		"Batch update", "Applies <id>.<field> updates atomically"), s.handleBatchUpdate)
	huma.Register(s.api, editOperation("updateSection", http.MethodPatch, "/sections/{sectionId}",
		"Update section", "Changes a section's kind and renumbers"), s.handleUpdateSection)
	huma.Register(s.api, editOperation("updateLine", http.MethodPatch, "/lines/{lineId}",
		"Update line", "Changes skill, adlib or dismissible flags"), s.handleUpdateLine)
	huma.Register(s.api, editOperation("updatePart", http.MethodPatch, "/parts/{partId}",
		"Update part", "Changes text, timing or recommended assignee"), s.handleUpdatePart)
}

// editOperation builds the operation for a structural edit under /api/v1/songs/{id}.
func editOperation(id, method, path, summary, description string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      method,
		Path:        "/api/v1/songs/{id}" + path,
		Summary:     summary,
		Description: description,
		Tags:        []string{"Song editing"},
	}
}

// === DTOs ===

// EditResponse is the song after an edit plus the ids the edit created.
type EditResponse struct {
	Song    SongResponse `json:"song" doc:"Song after the edit"`
	Created []string     `json:"created,omitempty" doc:"IDs of entities created by the edit"`
}

// EditOutput wraps an edit response for Huma.
type EditOutput struct {
	Body EditResponse
}

// AddSectionRequest is the request body for adding a section.
type AddSectionRequest struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,sectionkind" doc:"Section kind; NULL when omitted"`
	At   *int   `json:"at,omitempty" validate:"omitempty,gte=0" doc:"Insertion index; appended when omitted"`
}

// AddSectionInput wraps the add section request for Huma.
type AddSectionInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body AddSectionRequest
}

// InsertAtRequest positions a new child.
type InsertAtRequest struct {
	At *int `json:"at,omitempty" validate:"omitempty,gte=0" doc:"Insertion index; appended when omitted"`
}

// AddLineInput wraps the add line request for Huma.
type AddLineInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Body      InsertAtRequest
}

// AddPartRequest is the request body for adding a part.
type AddPartRequest struct {
	At   *int   `json:"at,omitempty" validate:"omitempty,gte=0" doc:"Insertion index; appended when omitted"`
	Text string `json:"text,omitempty" doc:"Lyric fragment"`
}

// AddPartInput wraps the add part request for Huma.
type AddPartInput struct {
	ID     string `path:"id" doc:"Song ID"`
	LineID string `path:"lineId" doc:"Line ID"`
	Body   AddPartRequest
}

// TextRequest carries lyric text to append.
type TextRequest struct {
	Text string `json:"text" validate:"required" doc:"Lyric text"`
}

// AppendSongTextInput wraps lyric text for a song.
type AppendSongTextInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body TextRequest
}

// AppendSectionTextInput wraps lyric text for a section.
type AppendSectionTextInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Body      TextRequest
}

// AppendLineTextInput wraps lyric text for a line.
type AppendLineTextInput struct {
	ID     string `path:"id" doc:"Song ID"`
	LineID string `path:"lineId" doc:"Line ID"`
	Body   TextRequest
}

// PartInput addresses a part.
type PartInput struct {
	ID     string `path:"id" doc:"Song ID"`
	PartID string `path:"partId" doc:"Part ID"`
}

// LineInput addresses a line.
type LineInput struct {
	ID     string `path:"id" doc:"Song ID"`
	LineID string `path:"lineId" doc:"Line ID"`
}

// SectionInput addresses a section.
type SectionInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
}

// DeleteSectionInput addresses a section to delete.
type DeleteSectionInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Cascade   bool   `query:"cascade" doc:"Also delete the section's lines and parts"`
}

// MergeRequest lists the entities to merge.
type MergeRequest struct {
	IDs []string `json:"ids" validate:"min=2,unique,dive,required" doc:"IDs to merge, in any order"`
}

// MergeInput wraps a merge request for Huma.
type MergeInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body MergeRequest
}

// MovePartRequest names the destination line.
type MovePartRequest struct {
	LineID string `json:"lineId" validate:"required" doc:"Destination line ID"`
}

// MovePartInput wraps a move part request for Huma.
type MovePartInput struct {
	ID     string `path:"id" doc:"Song ID"`
	PartID string `path:"partId" doc:"Part ID"`
	Body   MovePartRequest
}

// MoveLinesRequest names the lines and their destination section.
type MoveLinesRequest struct {
	SectionID string   `json:"sectionId" validate:"required" doc:"Destination section ID"`
	LineIDs   []string `json:"lineIds" validate:"min=1,dive,required" doc:"Lines to move"`
}

// MoveLinesInput wraps a move lines request for Huma.
type MoveLinesInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body MoveLinesRequest
}

// MoveSectionRequest names the target position.
type MoveSectionRequest struct {
	To int `json:"to" validate:"gte=0" doc:"Target index in the song's section order"`
}

// MoveSectionInput wraps a move section request for Huma.
type MoveSectionInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Body      MoveSectionRequest
}

// SplitPartRequest lists the texts of the resulting parts.
type SplitPartRequest struct {
	Segments []string `json:"segments" validate:"min=2,dive,required" doc:"Texts of the resulting parts, in order"`
}

// SplitPartInput wraps a split part request for Huma.
type SplitPartInput struct {
	ID     string `path:"id" doc:"Song ID"`
	PartID string `path:"partId" doc:"Part ID"`
	Body   SplitPartRequest
}

// SplitSectionRequest names the first line of the new section.
type SplitSectionRequest struct {
	LineID string `json:"lineId" validate:"required" doc:"First line of the new section"`
}

// SplitSectionInput wraps a split section request for Huma.
type SplitSectionInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Body      SplitSectionRequest
}

// NudgeRequest shifts part timings.
type NudgeRequest struct {
	Amount       int64  `json:"amount" validate:"ne=0" doc:"Signed shift in milliseconds"`
	AnchorLineID string `json:"anchorLineId,omitempty" doc:"Only shift parts starting at or after this line; whole song when omitted"`
}

// NudgeInput wraps a nudge request for Huma.
type NudgeInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body NudgeRequest
}

// BatchUpdateRequest carries field updates keyed by "<id>.<field>".
type BatchUpdateRequest struct {
	Updates map[string]any `json:"updates" validate:"min=1" doc:"Values keyed by <id>.<field>, e.g. _p4k2j9x.recommendedAssignee"`
}

// BatchUpdateInput wraps a batch update for Huma.
type BatchUpdateInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body BatchUpdateRequest
}

// UpdateSectionRequest changes a section's kind.
type UpdateSectionRequest struct {
	Kind string `json:"kind" validate:"required,sectionkind" doc:"Section kind"`
}

// UpdateSectionInput wraps an update section request for Huma.
type UpdateSectionInput struct {
	ID        string `path:"id" doc:"Song ID"`
	SectionID string `path:"sectionId" doc:"Section ID"`
	Body      UpdateSectionRequest
}

// SkillRequest is a line skill.
type SkillRequest struct {
	Type  string `json:"type" validate:"required,oneof=VOCAL RAP HIGH_NOTE CHOIR DANCE" doc:"Skill type"`
	Level int    `json:"level" validate:"gte=1,lte=3" doc:"Difficulty from 1 to 3"`
}

// UpdateLineRequest lists the line fields to change.
type UpdateLineRequest struct {
	Skill       *SkillRequest `json:"skill,omitempty" doc:"New skill"`
	ClearSkill  bool          `json:"clearSkill,omitempty" doc:"Remove the skill"`
	Adlib       *bool         `json:"adlib,omitempty" doc:"Show as an inline interjection"`
	Dismissible *bool         `json:"dismissible,omitempty" doc:"Hide during playback"`
}

// UpdateLineInput wraps an update line request for Huma.
type UpdateLineInput struct {
	ID     string `path:"id" doc:"Song ID"`
	LineID string `path:"lineId" doc:"Line ID"`
	Body   UpdateLineRequest
}

// UpdatePartRequest lists the part fields to change.
type UpdatePartRequest struct {
	Text                *string `json:"text,omitempty" doc:"Lyric fragment"`
	StartTime           *int64  `json:"startTime,omitempty" validate:"omitempty,gte=0" doc:"Start (ms)"`
	EndTime             *int64  `json:"endTime,omitempty" validate:"omitempty,gte=0" doc:"End (ms)"`
	RecommendedAssignee *string `json:"recommendedAssignee,omitempty" validate:"omitempty,min=1" doc:"Suggested performer or sentinel"`
}

// UpdatePartInput wraps an update part request for Huma.
type UpdatePartInput struct {
	ID     string `path:"id" doc:"Song ID"`
	PartID string `path:"partId" doc:"Part ID"`
	Body   UpdatePartRequest
}

// === Handlers ===

// edit runs fn against the song and returns it with the created ids.
func (s *Server) edit(ctx context.Context, songID, op string, fn func(tx *songedit.Tx) ([]string, error)) (*EditOutput, error) {
	var created []string
	song, err := s.services.Song.Edit(ctx, songID, op, func(tx *songedit.Tx) error {
		ids, err := fn(tx)
		created = ids
		return err
	})
	if err != nil {
		return nil, err
	}
	return &EditOutput{Body: EditResponse{Song: toSongResponse(song), Created: created}}, nil
}

// editNoIDs is edit for operations that create nothing.
func (s *Server) editNoIDs(ctx context.Context, songID, op string, fn func(tx *songedit.Tx) error) (*EditOutput, error) {
	return s.edit(ctx, songID, op, func(tx *songedit.Tx) ([]string, error) {
		return nil, fn(tx)
	})
}

func insertAt(at *int) int {
	if at == nil {
		return songedit.Append
	}
	return *at
}

func toStrings[T ~string](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func toIDs[T ~string](raw []string) []T {
	out := make([]T, len(raw))
	for i, id := range raw {
		out[i] = T(id)
	}
	return out
}

func (s *Server) handleAddSection(ctx context.Context, input *AddSectionInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "add_section", func(tx *songedit.Tx) ([]string, error) {
		sectionID, err := tx.AddSection(domain.SectionKind(input.Body.Kind), insertAt(input.Body.At))
		if err != nil {
			return nil, err
		}
		return []string{string(sectionID)}, tx.RenumberSections()
	})
}

func (s *Server) handleAddLine(ctx context.Context, input *AddLineInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "add_line", func(tx *songedit.Tx) ([]string, error) {
		lineID, err := tx.AddLine(domain.SectionID(input.SectionID), insertAt(input.Body.At))
		if err != nil {
			return nil, err
		}
		return []string{string(lineID)}, nil
	})
}

func (s *Server) handleAddPart(ctx context.Context, input *AddPartInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "add_part", func(tx *songedit.Tx) ([]string, error) {
		partID, err := tx.AddPart(domain.LineID(input.LineID), insertAt(input.Body.At), input.Body.Text)
		if err != nil {
			return nil, err
		}
		return []string{string(partID)}, nil
	})
}

func (s *Server) handleAppendSongText(ctx context.Context, input *AppendSongTextInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "append_text", func(tx *songedit.Tx) ([]string, error) {
		sectionIDs, err := tx.AppendText(input.Body.Text)
		if err != nil {
			return nil, err
		}
		return toStrings(sectionIDs), tx.RenumberSections()
	})
}

func (s *Server) handleAppendSectionText(ctx context.Context, input *AppendSectionTextInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "append_lines", func(tx *songedit.Tx) ([]string, error) {
		lineIDs, err := tx.AppendLines(domain.SectionID(input.SectionID), lyrics.ParseLines(input.Body.Text))
		return toStrings(lineIDs), err
	})
}

func (s *Server) handleAppendLineText(ctx context.Context, input *AppendLineTextInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "append_parts", func(tx *songedit.Tx) ([]string, error) {
		partIDs, err := tx.AppendParts(domain.LineID(input.LineID), lyrics.SplitParts(input.Body.Text))
		return toStrings(partIDs), err
	})
}

func (s *Server) handleDeletePart(ctx context.Context, input *PartInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "delete_part", func(tx *songedit.Tx) error {
		return tx.DeletePart(domain.PartID(input.PartID))
	})
}

func (s *Server) handleDeleteLine(ctx context.Context, input *LineInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "delete_line", func(tx *songedit.Tx) error {
		return tx.DeleteLine(domain.LineID(input.LineID))
	})
}

func (s *Server) handleDeleteSection(ctx context.Context, input *DeleteSectionInput) (*EditOutput, error) {
	op := "delete_section"
	if input.Cascade {
		op = "delete_section_cascade"
	}
	return s.editNoIDs(ctx, input.ID, op, func(tx *songedit.Tx) error {
		sectionID := domain.SectionID(input.SectionID)
		var err error
		if input.Cascade {
			err = tx.DeleteSectionCascade(sectionID)
		} else {
			err = tx.DeleteSection(sectionID)
		}
		if err != nil {
			return err
		}
		return tx.RenumberSections()
	})
}

func (s *Server) handleMergeParts(ctx context.Context, input *MergeInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "merge_parts", func(tx *songedit.Tx) error {
		_, err := tx.MergeParts(toIDs[domain.PartID](input.Body.IDs)...)
		return err
	})
}

func (s *Server) handleMergeLines(ctx context.Context, input *MergeInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "merge_lines", func(tx *songedit.Tx) error {
		_, err := tx.MergeLines(toIDs[domain.LineID](input.Body.IDs)...)
		return err
	})
}

func (s *Server) handleMergeSections(ctx context.Context, input *MergeInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "merge_sections", func(tx *songedit.Tx) error {
		if _, err := tx.MergeSections(toIDs[domain.SectionID](input.Body.IDs)...); err != nil {
			return err
		}
		return tx.RenumberSections()
	})
}

func (s *Server) handleMovePart(ctx context.Context, input *MovePartInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "move_part", func(tx *songedit.Tx) error {
		return tx.MovePart(domain.PartID(input.PartID), domain.LineID(input.Body.LineID))
	})
}

func (s *Server) handleMoveLines(ctx context.Context, input *MoveLinesInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "move_lines", func(tx *songedit.Tx) error {
		err := tx.MoveLines(domain.SectionID(input.Body.SectionID), toIDs[domain.LineID](input.Body.LineIDs)...)
		if err != nil {
			return err
		}
		return tx.RenumberSections()
	})
}

func (s *Server) handleMoveSection(ctx context.Context, input *MoveSectionInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "move_section", func(tx *songedit.Tx) error {
		return tx.MoveSection(domain.SectionID(input.SectionID), input.Body.To)
	})
}

func (s *Server) handleConvertPart(ctx context.Context, input *PartInput) (*EditOutput, error) {
	return s.edit(ctx, input.ID, "convert_part", func(tx *songedit.Tx) ([]string, error) {
		lineID, err := tx.ConvertPartToLine(domain.PartID(input.PartID))
		if err != nil {
			return nil, err
		}
		return []string{string(lineID)}, nil
	})
}

func (s *Server) handleSplitPart(ctx context.Context, input *SplitPartInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "split_part", func(tx *songedit.Tx) ([]string, error) {
		partIDs, err := tx.SplitPart(domain.PartID(input.PartID), input.Body.Segments)
		return toStrings(partIDs), err
	})
}

func (s *Server) handleSplitSection(ctx context.Context, input *SplitSectionInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.edit(ctx, input.ID, "split_section", func(tx *songedit.Tx) ([]string, error) {
		sectionID, err := tx.SplitSection(domain.SectionID(input.SectionID), domain.LineID(input.Body.LineID))
		if err != nil {
			return nil, err
		}
		return []string{string(sectionID)}, nil
	})
}

func (s *Server) handleSortSong(ctx context.Context, input *SongIDInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "sort_song", func(tx *songedit.Tx) error {
		return tx.SortSong()
	})
}

func (s *Server) handleSortSection(ctx context.Context, input *SectionInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "sort_section", func(tx *songedit.Tx) error {
		return tx.SortSection(domain.SectionID(input.SectionID))
	})
}

func (s *Server) handleSortLine(ctx context.Context, input *LineInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "sort_line", func(tx *songedit.Tx) error {
		return tx.SortLine(domain.LineID(input.LineID))
	})
}

func (s *Server) handleRenumber(ctx context.Context, input *SongIDInput) (*EditOutput, error) {
	return s.editNoIDs(ctx, input.ID, "renumber", func(tx *songedit.Tx) error {
		return tx.RenumberSections()
	})
}

func (s *Server) handleNudge(ctx context.Context, input *NudgeInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "nudge", func(tx *songedit.Tx) error {
		return tx.Nudge(input.Body.Amount, domain.LineID(input.Body.AnchorLineID))
	})
}

func (s *Server) handleBatchUpdate(ctx context.Context, input *BatchUpdateInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "batch_update", func(tx *songedit.Tx) error {
		return tx.BatchUpdate(input.Body.Updates)
	})
}

func (s *Server) handleUpdateSection(ctx context.Context, input *UpdateSectionInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "update_section", func(tx *songedit.Tx) error {
		return tx.UpdateSectionKind(domain.SectionID(input.SectionID), domain.SectionKind(input.Body.Kind))
	})
}

func (s *Server) handleUpdateLine(ctx context.Context, input *UpdateLineInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	update := songedit.LineUpdate{
		ClearSkill:  input.Body.ClearSkill,
		Adlib:       input.Body.Adlib,
		Dismissible: input.Body.Dismissible,
	}
	if sk := input.Body.Skill; sk != nil {
		update.Skill = &domain.Skill{Type: domain.SkillType(sk.Type), Level: sk.Level}
	}
	return s.editNoIDs(ctx, input.ID, "update_line", func(tx *songedit.Tx) error {
		return tx.UpdateLine(domain.LineID(input.LineID), update)
	})
}

func (s *Server) handleUpdatePart(ctx context.Context, input *UpdatePartInput) (*EditOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}
	return s.editNoIDs(ctx, input.ID, "update_part", func(tx *songedit.Tx) error {
		return tx.UpdatePart(domain.PartID(input.PartID), songedit.PartUpdate{
			Text:                input.Body.Text,
			StartTime:           input.Body.StartTime,
			EndTime:             input.Body.EndTime,
			RecommendedAssignee: input.Body.RecommendedAssignee,
		})
	})
}
