package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	productdomain "github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	tagdomain "github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

var (
	errInvalidBody   = errors.New("invalid request body")
	errReadOnlyField = errors.New("field cannot be written")
	errMissingID     = errors.New("missing id")
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// errorStatus maps domain and transport errors onto HTTP statuses. The
// first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{productdomain.ErrProductNotFound, http.StatusNotFound},
	{tagdomain.ErrTagNotFound, http.StatusNotFound},

	{productdomain.ErrProductExists, http.StatusConflict},
	{tagdomain.ErrTagExists, http.StatusConflict},

	{productdomain.ErrEmptyName, http.StatusUnprocessableEntity},
	{tagdomain.ErrEmptyTitle, http.StatusUnprocessableEntity},
	{shared.ErrTooManyExtras, http.StatusUnprocessableEntity},
	{shared.ErrExtraKeyTooLong, http.StatusUnprocessableEntity},
	{shared.ErrEmptyExtraKey, http.StatusUnprocessableEntity},
	{shared.ErrExtrasTooLarge, http.StatusUnprocessableEntity},
	{shared.ErrReservedExtraKey, http.StatusUnprocessableEntity},
	{errReadOnlyField, http.StatusUnprocessableEntity},
	{errInvalidField, http.StatusUnprocessableEntity},

	{query.ErrInvalidFilter, http.StatusBadRequest},
	{errInvalidBody, http.StatusBadRequest},
	{errMissingID, http.StatusBadRequest},
	{ErrNotMultipart, http.StatusBadRequest},
	{ErrTooManyFiles, http.StatusBadRequest},
	{ErrFileType, http.StatusBadRequest},
	{ErrMalformedMultipart, http.StatusBadRequest},

	{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{ErrFieldTooLarge, http.StatusRequestEntityTooLarge},
	{ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
}

var statusNames = map[int]string{
	http.StatusBadRequest:            "BadRequestError",
	http.StatusNotFound:              "NotFoundError",
	http.StatusConflict:              "ConflictError",
	http.StatusRequestEntityTooLarge: "PayloadTooLargeError",
	http.StatusUnprocessableEntity:   "UnprocessableEntityError",
	http.StatusInternalServerError:   "InternalServerError",
}

func statusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes the envelope for err and aborts the chain. Internal
// errors are attached to the context for the request logger and hidden
// from the client.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "Internal Server Error"
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{
		StatusCode: status,
		Name:       statusNames[status],
		Message:    msg,
	}})
}
