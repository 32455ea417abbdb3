package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

type BlogHandler struct {
	blogSvc *service.BlogService
}

func NewBlogHandler(blogSvc *service.BlogService) *BlogHandler {
	return &BlogHandler{blogSvc: blogSvc}
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	result, err := h.blogSvc.ListPublished(r.Context(), repository.PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.blogSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in struct {
		Title     string `json:"title"`
		Slug      string `json:"slug"`
		Body      string `json:"body"`
		Published bool   `json:"published"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	post, err := h.blogSvc.CreatePost(r.Context(), principal.ID, in.Title, in.Slug, in.Body, in.Published)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, post)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}
	var post domain.BlogPost
	if !decodeJSON(w, r, &post) {
		return
	}
	post.ID = id
	if err := h.blogSvc.UpdatePost(r.Context(), &post); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}
	if err := h.blogSvc.DeletePost(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
