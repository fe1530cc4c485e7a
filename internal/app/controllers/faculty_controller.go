package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/middleware"
)

// FacultyController serves the org directory
type FacultyController struct {
	facultyService services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService services.FacultyService) *FacultyController {
	return &FacultyController{
		facultyService: facultyService,
	}
}

// GetAllFaculties lists faculties
// @Summary List faculties
// @Description Lists every faculty with its departments, ordered by name
// @Tags faculties
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.FacultyResponse} "Faculties retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculties [get]
func (c *FacultyController) GetAllFaculties(ctx *gin.Context) {
	faculties, err := c.facultyService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyResponses(faculties), ""))
}

// GetFacultyByID retrieves a faculty by ID
// @Summary Get faculty details
// @Description Retrieves a faculty with its departments
// @Tags faculties
// @Produce json
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid faculty ID format"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculties/{id} [get]
func (c *FacultyController) GetFacultyByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "faculty")
	if !ok {
		return
	}

	faculty, err := c.facultyService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyResponse(faculty), ""))
}

// GetAllDepartments lists departments
// @Summary List departments
// @Description Lists departments ordered by name, optionally of one faculty
// @Tags departments
// @Produce json
// @Param facultyId query int false "Faculty ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.DepartmentResponse} "Departments retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid faculty ID format"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [get]
func (c *FacultyController) GetAllDepartments(ctx *gin.Context) {
	var facultyID *int64
	if raw := ctx.Query("facultyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid faculty ID").
				WithField("facultyId").
				WithDetails("Faculty ID must be a valid number")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		facultyID = &id
	}

	departments, err := c.facultyService.ListDepartments(ctx.Request.Context(), facultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDepartmentResponses(departments), ""))
}
