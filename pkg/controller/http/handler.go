package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/usecase"
)

// maxRequestBytes bounds JSON bodies that carry no document
const maxRequestBytes = 64 << 10

func mentorID(r *http.Request) model.MentorID {
	return model.MentorID(chi.URLParam(r, "mentorID"))
}

func (s *Server) listMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := s.uc.Mentor.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]mentorResponse, len(mentors))
	for i, m := range mentors {
		resp[i] = toMentor(m)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createMentor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Specialty string `json:"specialty"`
	}
	if err := decodeJSON(w, r, maxRequestBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	mentor, err := s.uc.Mentor.Create(r.Context(), req.Name, req.Specialty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toMentor(mentor))
}

func (s *Server) getMentor(w http.ResponseWriter, r *http.Request) {
	mentor, err := s.uc.Mentor.Get(r.Context(), mentorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMentor(mentor))
}

func (s *Server) mentorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.uc.Mentor.Stats(r.Context(), mentorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, statsResponse{
		Contents:          stats.Contents,
		ProcessedContents: stats.ProcessedContents,
		Chunks:            stats.Chunks,
		Conversations:     stats.Conversations,
		Answers:           stats.Answers,
	})
}

func (s *Server) listContents(w http.ResponseWriter, r *http.Request) {
	contents, err := s.uc.Ingest.Contents(r.Context(), mentorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]contentResponse, len(contents))
	for i, c := range contents {
		resp[i] = toContent(c)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) ingestContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	// the text is JSON-escaped, so the body may be larger than the document
	if err := decodeJSON(w, r, 2*s.maxDocBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if int64(len(req.Text)) > s.maxDocBytes {
		writeError(w, r, goerr.Wrap(errBadRequest, "document too large", goerr.V("bytes", len(req.Text))))
		return
	}

	content, err := s.uc.Ingest.Ingest(r.Context(), usecase.IngestInput{
		MentorID: mentorID(r),
		Title:    req.Title,
		Text:     req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toContent(content))
}

func (s *Server) deleteContent(w http.ResponseWriter, r *http.Request) {
	contentID := model.ContentID(chi.URLParam(r, "contentID"))

	chunks, err := s.uc.Ingest.DeleteContent(r.Context(), mentorID(r), contentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"deleted_contents": 1, "deleted_chunks": chunks})
}

func (s *Server) deleteContents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []model.ContentID `json:"ids"`
	}
	if err := decodeJSON(w, r, maxRequestBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	contents, chunks, err := s.uc.Ingest.DeleteContents(r.Context(), mentorID(r), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"deleted_contents": contents, "deleted_chunks": chunks})
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question       string `json:"question"`
		ConversationID string `json:"conversation_id"`
		UserID         string `json:"user_id"`
		Provider       string `json:"provider"`
	}
	if err := decodeJSON(w, r, maxRequestBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := usecase.AskInput{
		MentorID:       mentorID(r),
		ConversationID: model.ConversationID(req.ConversationID),
		UserID:         req.UserID,
		Question:       req.Question,
	}
	if req.Provider != "" {
		name, err := types.ParseProviderName(req.Provider)
		if err != nil {
			writeError(w, r, goerr.Wrap(errBadRequest, "invalid provider", goerr.V("provider", req.Provider)))
			return
		}
		input.Preferred = name
	}

	answer, err := s.uc.Chat.Ask(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAnswer(answer))
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.uc.Chat.Conversations(r.Context(), mentorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]conversationResponse, len(convs))
	for i, c := range convs {
		resp[i] = conversationResponse{ID: c.ID, UserID: c.UserID, Title: c.Title, UpdatedAt: c.UpdatedAt}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	convID := model.ConversationID(chi.URLParam(r, "conversationID"))

	msgs, err := s.uc.Chat.Messages(r.Context(), convID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = messageResponse{
			ID:        m.ID,
			Sender:    string(m.Sender),
			Text:      m.Text,
			Citations: toCitations(m.Citations),
			Provider:  string(m.ProviderUsed),
			CreatedAt: m.CreatedAt,
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.Search.Universal(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSearch(result))
}

func (s *Server) showProfile(w http.ResponseWriter, r *http.Request) {
	s.profileAction(w, r, s.uc.Profile.Show)
}

func (s *Server) approveProfile(w http.ResponseWriter, r *http.Request) {
	s.profileAction(w, r, s.uc.Profile.Approve)
}

func (s *Server) rejectProfile(w http.ResponseWriter, r *http.Request) {
	s.profileAction(w, r, s.uc.Profile.Reject)
}

func (s *Server) profileAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id model.MentorID) (*model.Mentor, error)) {
	mentor, err := action(r.Context(), mentorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMentor(mentor))
}
