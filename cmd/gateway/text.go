package main

import (
	"net/http"

	"textprep/internal/app"
	"textprep/internal/httputil"
	"textprep/internal/llm"
	"textprep/internal/normalizer"
	"textprep/internal/prompt"
)

type normalizeRequest struct {
	Text             string `json:"text"`
	Stem             *bool  `json:"stem"`
	Lemmatize        *bool  `json:"lemmatize"`
	StripPunctuation bool   `json:"strip_punctuation"`
}

type batchRequest struct {
	Texts            []string `json:"texts" validate:"required,min=1,max=256"`
	Stem             *bool    `json:"stem"`
	Lemmatize        *bool    `json:"lemmatize"`
	StripPunctuation bool     `json:"strip_punctuation"`
}

type textRequest struct {
	Text string `json:"text" validate:"required"`
}

type translateRequest struct {
	Text       string `json:"text" validate:"required"`
	TargetLang string `json:"target_lang" validate:"omitempty,max=64"`
}

type generateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type chatRequest struct {
	History []llm.Message `json:"history" validate:"max=50,dive"`
	Message string        `json:"message" validate:"required"`
}

// flags resolves optional per-request reduction flags against the
// configured defaults.
func flags(deps app.Deps, stem, lemmatize *bool) (bool, bool) {
	s, l := deps.Config.Stem, deps.Config.Lemmatize
	if stem != nil {
		s = *stem
	}
	if lemmatize != nil {
		l = *lemmatize
	}
	return s, l
}

func normalizeHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req normalizeRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		stem, lem := flags(deps, req.Stem, req.Lemmatize)
		tokens := deps.Processor.Tokenize(req.Text, stem, lem)
		if req.StripPunctuation {
			tokens = normalizer.FilterPunctuation(tokens)
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"tokens":     tokens,
			"stemmed":    stem,
			"lemmatized": lem,
		})
	}
}

func batchHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxUploadSize)
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		stem, lem := flags(deps, req.Stem, req.Lemmatize)
		results, err := deps.Processor.TokenizeBatch(r.Context(), req.Texts, stem, lem)
		if err != nil {
			httputil.Fail(deps.Log, w, "batch normalization aborted", err, http.StatusServiceUnavailable)
			return
		}
		if req.StripPunctuation {
			for i := range results {
				results[i] = normalizer.FilterPunctuation(results[i])
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"results":    results,
			"stemmed":    stem,
			"lemmatized": lem,
		})
	}
}

func translateHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		out, err := deps.Processor.Translate(r.Context(), req.Text, req.TargetLang)
		if err != nil {
			failRemote(deps.Log, w, "translation", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"translation": out})
	}
}

func entitiesHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		entities, err := deps.Processor.ExtractEntities(r.Context(), req.Text)
		if err != nil {
			failRemote(deps.Log, w, "entity extraction", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"entities": entities})
	}
}

func sentimentHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		s, err := deps.Processor.AnalyzeSentiment(r.Context(), req.Text)
		if err != nil {
			failRemote(deps.Log, w, "sentiment analysis", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func generateHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		out, err := deps.Processor.GenerateText(r.Context(), req.Prompt)
		if err != nil {
			failRemote(deps.Log, w, "text generation", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"text": out})
	}
}

func embedHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		vec, err := deps.Processor.Embed(r.Context(), req.Text)
		if err != nil {
			failRemote(deps.Log, w, "embedding", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"embedding": vec, "dimensions": len(vec)})
	}
}

func chatHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		reply, err := deps.Processor.Chat(r.Context(), req.History, req.Message)
		if err != nil {
			failRemote(deps.Log, w, "chat", err)
			return
		}
		history := append(req.History,
			llm.Message{Role: llm.RoleUser, Content: req.Message},
			llm.Message{Role: llm.RoleAssistant, Content: reply},
		)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"reply": reply, "history": history})
	}
}

func cleanPromptHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"prompt": prompt.Clean(req.Prompt)})
	}
}
