package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/service/embedding"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/errutil"
)

var errBadRequest = errors.New("bad request")

type profileResponse struct {
	Text      string    `json:"text"`
	Traits    string    `json:"traits"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type mentorResponse struct {
	ID             model.MentorID   `json:"id"`
	Name           string           `json:"name"`
	Specialty      string           `json:"specialty,omitempty"`
	ProfileStatus  string           `json:"profile_status"`
	ActiveProfile  *profileResponse `json:"active_profile,omitempty"`
	PendingProfile *profileResponse `json:"pending_profile,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

type contentResponse struct {
	ID         model.ContentID `json:"id"`
	Title      string          `json:"title"`
	Status     string          `json:"status"`
	ChunkCount int             `json:"chunk_count"`
	CreatedAt  time.Time       `json:"created_at"`
}

type citationResponse struct {
	SourceID model.ContentID `json:"source_id"`
	Title    string          `json:"title"`
	Excerpt  string          `json:"excerpt"`
}

type answerResponse struct {
	ConversationID model.ConversationID `json:"conversation_id"`
	MessageID      model.MessageID      `json:"message_id"`
	Mentor         string               `json:"mentor"`
	Text           string               `json:"text"`
	Citations      []citationResponse   `json:"citations"`
	Provider       string               `json:"provider"`
	ProviderName   string               `json:"provider_name,omitempty"`
}

type conversationResponse struct {
	ID        model.ConversationID `json:"id"`
	UserID    string               `json:"user_id,omitempty"`
	Title     string               `json:"title"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type messageResponse struct {
	ID        model.MessageID    `json:"id"`
	Sender    string             `json:"sender"`
	Text      string             `json:"text"`
	Citations []citationResponse `json:"citations,omitempty"`
	Provider  string             `json:"provider,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type excerptResponse struct {
	ContentID model.ContentID `json:"content_id"`
	Title     string          `json:"title"`
	Text      string          `json:"text"`
	Score     float64         `json:"score"`
}

type mentorMatchResponse struct {
	ID        model.MentorID    `json:"id"`
	Name      string            `json:"name"`
	Specialty string            `json:"specialty,omitempty"`
	BestScore float64           `json:"best_score"`
	Excerpts  []excerptResponse `json:"excerpts"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Mentors []mentorMatchResponse `json:"mentors"`
}

type statsResponse struct {
	Contents          int `json:"contents"`
	ProcessedContents int `json:"processed_contents"`
	Chunks            int `json:"chunks"`
	Conversations     int `json:"conversations"`
	Answers           int `json:"answers"`
}

func toProfile(p *model.StyleProfile) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		Text:      p.ProfileText,
		Traits:    p.StyleTraits,
		Source:    p.AnalysisSource.String(),
		CreatedAt: p.CreatedAt,
	}
}

func toMentor(m *model.Mentor) mentorResponse {
	return mentorResponse{
		ID:             m.ID,
		Name:           m.Name,
		Specialty:      m.Specialty,
		ProfileStatus:  m.ProfileStatus.String(),
		ActiveProfile:  toProfile(m.ActiveProfile),
		PendingProfile: toProfile(m.PendingProfile),
		CreatedAt:      m.CreatedAt,
	}
}

func toContent(c *model.Content) contentResponse {
	return contentResponse{
		ID:         c.ID,
		Title:      c.Title,
		Status:     string(c.Status),
		ChunkCount: c.ChunkCount,
		CreatedAt:  c.CreatedAt,
	}
}

func toCitations(citations []model.Citation) []citationResponse {
	resp := make([]citationResponse, len(citations))
	for i, c := range citations {
		resp[i] = citationResponse{SourceID: c.SourceID, Title: c.Title, Excerpt: c.Excerpt}
	}
	return resp
}

func toAnswer(a *usecase.Answer) answerResponse {
	return answerResponse{
		ConversationID: a.ConversationID,
		MessageID:      a.MessageID,
		Mentor:         a.MentorName,
		Text:           a.Text,
		Citations:      toCitations(a.Citations),
		Provider:       a.ProviderUsed.String(),
		ProviderName:   a.ProviderName.String(),
	}
}

func toSearch(result *usecase.SearchResult) searchResponse {
	resp := searchResponse{
		Query:   result.Query,
		Mentors: make([]mentorMatchResponse, len(result.Mentors)),
	}
	for i, m := range result.Mentors {
		match := mentorMatchResponse{
			ID:        m.MentorID,
			Name:      m.Name,
			Specialty: m.Specialty,
			BestScore: m.BestScore,
			Excerpts:  make([]excerptResponse, len(m.Excerpts)),
		}
		for j, e := range m.Excerpts {
			match.Excerpts[j] = excerptResponse{
				ContentID: e.ContentID,
				Title:     e.ContentTitle,
				Text:      e.Text,
				Score:     e.Score,
			}
		}
		resp.Mentors[i] = match
	}
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// decodeJSON reads a JSON body of at most limit bytes into v
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("error", err.Error()))
	}
	return nil
}

// writeError maps use case errors to a status and a message safe to show
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, usecase.ErrMentorNotFound),
		errors.Is(err, usecase.ErrContentNotFound),
		errors.Is(err, usecase.ErrConversationNotFound):
		status, message = http.StatusNotFound, "not found"

	case errors.Is(err, usecase.ErrMentorInactive),
		errors.Is(err, usecase.ErrProfilePending),
		errors.Is(err, usecase.ErrNoPendingProfile):
		status, message = http.StatusConflict, usecase.ErrNoPendingProfile.Error()

	case errors.Is(err, usecase.ErrInvalidQuestion),
		errors.Is(err, usecase.ErrQueryTooShort),
		errors.Is(err, usecase.ErrEmptyDocument),
		errors.Is(err, usecase.ErrInvalidMentor),
		errors.Is(err, errBadRequest):
		status, message = http.StatusBadRequest, "bad request"

	case errors.Is(err, embedding.ErrEmbeddingUnavailable):
		status = http.StatusServiceUnavailable

	case errors.Is(err, usecase.ErrNotConfigured):
		status, message = http.StatusNotImplemented, "not available on this server"
	}

	if msg, ok := usecase.UserMessage(err); ok {
		message = msg
	}
	errutil.HandleHTTP(r.Context(), w, err, status, message)
}
