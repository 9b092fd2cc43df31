package blog

import (
	"encoding/json"
	"errors"
	"net/http"
)

// UserIDFunc resolves the acting user for metadata stamping. Typically this
// reads the authenticated principal from the request context.
type UserIDFunc func(r *http.Request) string

// Handler serves the post CRUD API under /api/posts.
type Handler struct {
	store  Store
	userID UserIDFunc
	mux    *http.ServeMux
}

// NewHandler creates a post API handler. userID may be nil, in which case
// metadata is stamped with an empty user.
func NewHandler(store Store, userID UserIDFunc) *Handler {
	h := &Handler{
		store:  store,
		userID: userID,
		mux:    http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /api/posts", h.create)
	h.mux.HandleFunc("GET /api/posts", h.list)
	h.mux.HandleFunc("GET /api/posts/{id}", h.get)
	h.mux.HandleFunc("PUT /api/posts/{id}", h.update)
	h.mux.HandleFunc("DELETE /api/posts/{id}", h.delete)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) actor(r *http.Request) string {
	if h.userID == nil {
		return ""
	}
	return h.userID(r)
}

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func decodeBody(r *http.Request) (postBody, error) {
	var body postBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return postBody{}, err
	}
	if body.Title == "" {
		return postBody{}, errors.New("title required")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		http.Error(w, "post not found", http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		http.Error(w, "invalid post body", http.StatusUnprocessableEntity)
		return
	}

	id, err := h.store.NextID(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	post := Post{
		PostID:  id,
		Title:   body.Title,
		Content: body.Content,
	}
	post.StampCreated(h.actor(r))

	if err := h.store.Create(r.Context(), post); err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		http.Error(w, "invalid post body", http.StatusUnprocessableEntity)
		return
	}

	post, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	post.Title = body.Title
	post.Content = body.Content
	post.StampUpdated(h.actor(r))

	if err := h.store.Update(r.Context(), *post); err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id"), h.actor(r)); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
