package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/middleware"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
)

// ProjectController handles the project gallery, moderation and comments
type ProjectController struct {
	projectService services.ProjectService
	intake         *filestorage.Intake
	documentPolicy filestorage.Policy
	logger         zerolog.Logger
}

// NewProjectController creates a new ProjectController
func NewProjectController(projectService services.ProjectService, intake *filestorage.Intake, maxUploadBytes int64, logger zerolog.Logger) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		intake:         intake,
		documentPolicy: filestorage.DocumentPolicy(maxUploadBytes),
		logger:         logger,
	}
}

// readSubmission binds the project fields and stores an attached document.
// The returned reference is "" when no document was sent.
func (c *ProjectController) readSubmission(ctx *gin.Context) (dto.ProjectFields, string, bool) {
	var fields dto.ProjectFields
	if !middleware.BindForm(ctx, &fields) {
		return fields, "", false
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return fields, "", true
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid multipart form").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return fields, "", false
	}

	ref, err := c.intake.Accept(form, c.documentPolicy)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return fields, "", false
	}
	return fields, ref, true
}

// CreateProject submits a project
// @Summary Submit a project
// @Description Students submit a project, optionally with a document (pdf, doc, docx, ppt, pptx, zip, jpg, jpeg, png). New projects are pending review.
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param technologies formData string false "Comma separated technologies"
// @Param githubLink formData string false "Repository link"
// @Param supervisorId formData int false "Supervisor user ID"
// @Param document formData file false "Project document"
// @Success 201 {object} dto.APIResponse{data=dto.ProjectResponse} "Project submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid project data or file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Only students can submit projects"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	fields, ref, ok := c.readSubmission(ctx)
	if !ok {
		return
	}

	project, err := c.projectService.Create(ctx.Request.Context(), userID, fields, ref)
	if err != nil {
		c.discard(ref)
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewProjectResponse(project), "Project submitted for review"))
}

// UpdateProject edits a project
// @Summary Update a project
// @Description Partial update. Empty fields keep their value. An edit by the owning student sends the project back to pending.
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param technologies formData string false "Comma separated technologies"
// @Param githubLink formData string false "Repository link"
// @Param supervisorId formData int false "Supervisor user ID"
// @Param document formData file false "Replacement document"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectResponse} "Project updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid project data or file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	fields, ref, ok := c.readSubmission(ctx)
	if !ok {
		return
	}

	project, err := c.projectService.Update(ctx.Request.Context(), id, userID, fields, ref)
	if err != nil {
		c.discard(ref)
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProjectResponse(project), "Project updated"))
}

// ReviewProject sets a project's moderation status
// @Summary Review a project
// @Description Supervisors review projects of their department, faculty admins projects of their faculty and admins any project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Param request body dto.ReviewProjectRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectResponse} "Project reviewed"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id}/review [patch]
func (c *ProjectController) ReviewProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	var req dto.ReviewProjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	project, err := c.projectService.Review(ctx.Request.Context(), id, userID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("projectID", id).Int64("reviewerID", userID).Str("status", req.Status).Msg("Project reviewed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProjectResponse(project), "Project "+string(project.Status)))
}

// DeleteProject removes a project with its comments and views
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Project deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid project ID format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	if err := c.projectService.Delete(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Project deleted"}, ""))
}

// GetProject returns a project and records a view
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ProjectResponse} "Project retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid project ID format"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	project, views, err := c.projectService.Get(ctx.Request.Context(), id, ctx.ClientIP())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.NewProjectResponse(project)
	resp.ViewCount = &views
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ListProjects lists the public gallery
// @Summary List approved projects
// @Description Lists approved projects newest first
// @Tags projects
// @Produce json
// @Param category query string false "Exact category"
// @Param technology query string false "Technology, case-insensitive substring"
// @Param faculty query string false "Faculty name of the owning student"
// @Param department query string false "Department name of the owning student"
// @Param year query int false "Creation year"
// @Success 200 {object} dto.APIResponse{data=[]dto.ProjectResponse} "Projects retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	var q dto.ProjectListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	projects, err := c.projectService.ListPublic(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProjectResponses(projects), ""))
}

// ListReviewQueue lists projects the caller may review
// @Summary List projects to review
// @Description Supervisors see their department, faculty admins their faculty, admins everything
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ProjectResponse} "Projects retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/faculty/my-projects [get]
func (c *ProjectController) ListReviewQueue(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projects, err := c.projectService.ListForReviewer(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProjectResponses(projects), ""))
}

// ListMyProjects lists the caller's own projects in any status
// @Summary List own projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ProjectResponse} "Projects retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/my-projects [get]
func (c *ProjectController) ListMyProjects(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projects, err := c.projectService.ListMine(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProjectResponses(projects), ""))
}

// AddComment comments on a project
// @Summary Add a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse} "Comment added"
// @Failure 400 {object} dto.ErrorResponse "Empty comment"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id}/comments [post]
func (c *ProjectController) AddComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.projectService.AddComment(ctx.Request.Context(), id, userID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewCommentResponse(comment), "Comment added"))
}

// ListComments lists a project's comments newest first
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path int true "Project ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse} "Comments retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid project ID format"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /projects/{id}/comments [get]
func (c *ProjectController) ListComments(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "project")
	if !ok {
		return
	}

	comments, err := c.projectService.ListComments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCommentResponses(comments), ""))
}

func (c *ProjectController) discard(ref string) {
	if err := c.intake.Discard(ref); err != nil {
		c.logger.Warn().Err(err).Str("ref", ref).Msg("Failed to discard uploaded document")
	}
}
