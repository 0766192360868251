package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/catalog-service/internal/app/tag/queries/find_tags"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/create_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/delete_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/update_tag"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// TagHandler serves the /tags routes.
type TagHandler struct {
	createTag *create_tag.Interactor
	updateTag *update_tag.Interactor
	deleteTag *delete_tag.Interactor
	findTags  *find_tags.Query
}

func NewTagHandler(
	createTag *create_tag.Interactor,
	updateTag *update_tag.Interactor,
	deleteTag *delete_tag.Interactor,
	findTags *find_tags.Query,
) *TagHandler {
	return &TagHandler{createTag: createTag, updateTag: updateTag, deleteTag: deleteTag, findTags: findTags}
}

func (h *TagHandler) Create(c *gin.Context) {
	in, err := readTagJSON(c)
	if err != nil {
		respondError(c, err)
		return
	}
	tag, err := h.createTag.Execute(c.Request.Context(), in.attributes())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagToResponse(tag))
}

func (h *TagHandler) Find(c *gin.Context) {
	f, err := query.ParseFilter(c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	tags, err := h.findTags.Find(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagsToResponse(tags))
}

func (h *TagHandler) FindByID(c *gin.Context) {
	tag, err := h.findTags.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagToResponse(tag))
}

func (h *TagHandler) Count(c *gin.Context) {
	where, err := query.ParseWhere(c.Query("where"))
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.findTags.Count(c.Request.Context(), where)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

func (h *TagHandler) UpdateByID(c *gin.Context) {
	in, err := readTagJSON(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.updateTag.Execute(c.Request.Context(), c.Param("id"), in.patch()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByID serves both DELETE /tags/:id and DELETE /tags?id=.
func (h *TagHandler) DeleteByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}
	if id == "" {
		respondError(c, errMissingID)
		return
	}
	if err := h.deleteTag.Execute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func readTagJSON(c *gin.Context) (tagInput, error) {
	body, err := readBody(c)
	if err != nil {
		return tagInput{}, err
	}
	return tagInputFromJSON(body)
}
