package handler

import (
	"github.com/dhis2-sre/eventos/internal/errdef"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var acceptedContentTypes = []string{
	binding.MIMEPOSTForm,
	binding.MIMEMultipartPOSTForm,
	binding.MIMEJSON,
}

// DataBinder binds the request body into req. Validation failures are returned as an
// [errdef.NewValidation] error carrying one message per field.
func DataBinder(c *gin.Context, req any) error {
	if !isAccepted(c.ContentType()) {
		return errdef.NewBadRequest("%s only accepts content of type %v", c.FullPath(), acceptedContentTypes)
	}

	if err := c.ShouldBind(req); err != nil {
		if fields := FieldErrors(err); fields != nil {
			return errdef.NewValidation(fields)
		}
		return errdef.NewBadRequest("error binding data: %v", err)
	}

	return nil
}

func isAccepted(contentType string) bool {
	for _, accepted := range acceptedContentTypes {
		if contentType == accepted {
			return true
		}
	}
	return false
}
