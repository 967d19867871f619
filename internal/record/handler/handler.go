package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/service"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
)

// RegisterRecordRoutes mounts the create/list/get/update/delete routes of the
// service's kind under /<kind>.
func RegisterRecordRoutes(r gin.IRouter, svc service.Service) {
	kind := svc.Kind()
	g := r.Group("/" + kind.Name)

	g.POST("/create", func(c *gin.Context) {
		body, upload, ok := bindRequest(c, kind)
		if !ok {
			return
		}
		res, err := svc.Create(c.Request.Context(), body, upload)
		if err != nil {
			respondError(c, kind, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Message": kind.Messages.Created, "newData": res})
	})

	g.GET("/all", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, kind, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Message": kind.ListMessage(), "data": list})
	})

	g.GET("/:id", func(c *gin.Context) {
		rec, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, kind, err)
			return
		}
		// an absent record is answered with a JSON null
		c.JSON(http.StatusOK, rec)
	})

	g.PUT("/:id", func(c *gin.Context) {
		body, upload, ok := bindRequest(c, kind)
		if !ok {
			return
		}
		res, fields, err := svc.Update(c.Request.Context(), c.Param("id"), body, upload)
		if err != nil {
			respondError(c, kind, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": res, kind.EchoKey: fields})
	})

	g.DELETE("/:id", func(c *gin.Context) {
		res, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, kind, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Message": kind.Messages.Deleted, "deleteData": res})
	})
}

// RegisterUploadRoutes serves stored attachments at /uploads/:filename.
func RegisterUploadRoutes(r gin.IRouter, files attachment.Manager) {
	r.GET("/"+attachment.PublicPrefix+"/:filename", func(c *gin.Context) {
		obj, err := files.Open(c.Request.Context(), c.Param("filename"))
		if err != nil {
			if errors.Is(err, attachment.ErrMissing) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			_ = c.Error(err)
			logger.Errorf("open attachment %s: %v", c.Param("filename"), err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		defer obj.Body.Close()
		c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
	})
}

// bindRequest reads the request body as JSON, urlencoded or multipart form.
// On failure it writes the 400 response itself and returns ok=false.
func bindRequest(c *gin.Context, kind record.Kind) (record.Record, attachment.Upload, bool) {
	body := record.Record{}
	ct := c.ContentType()
	switch {
	case ct == gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"Message": "invalid multipart body: " + err.Error()})
			return nil, attachment.NoFile, false
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				body[k] = vs[0]
			}
		}
		upload := attachment.NoFile
		if kind.HasAttachment() {
			if fhs := form.File[kind.AttachmentField]; len(fhs) > 0 {
				upload = attachment.FileProvided(fhs[0])
			}
		}
		return body, upload, true

	case ct == gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"Message": "invalid form body: " + err.Error()})
			return nil, attachment.NoFile, false
		}
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				body[k] = vs[0]
			}
		}
		return body, attachment.NoFile, true

	case ct == gin.MIMEJSON || strings.HasSuffix(ct, "+json"):
		if c.Request.ContentLength == 0 {
			return body, attachment.NoFile, true
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"Message": "invalid JSON body: " + err.Error()})
			return nil, attachment.NoFile, false
		}
		return body, attachment.NoFile, true
	}
	// no or unknown content type: treated as an empty body
	return body, attachment.NoFile, true
}

// respondError maps service errors onto HTTP responses. Anything that is not
// a client error ends as a bare 500.
func respondError(c *gin.Context, kind record.Kind, err error) {
	var verr *record.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"Message": verr.Error()})
	case errors.Is(err, record.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"Message": kind.Messages.NotFound})
	default:
		_ = c.Error(err)
		logger.With("kind", kind.Name).Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
