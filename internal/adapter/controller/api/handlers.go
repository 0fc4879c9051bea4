package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/pkg/textnorm"
)

func toDTOs[T task.Item](items []T) []dto.TaskDTO {
	result := make([]dto.TaskDTO, 0, len(items))
	for _, it := range items {
		result = append(result, dto.ToTaskDTO(it))
	}
	return result
}

// bindItem decodes the request body; it writes 400 and returns false on failure
func bindItem(c *gin.Context) (dto.TaskDTO, bool) {
	var d dto.TaskDTO
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		badRequest(c, "Empty request body")
		return d, false
	}
	if err := binding.JSON.BindBody(body, &d); err != nil {
		badRequest(c, "Invalid JSON format")
		return d, false
	}
	d.Title = textnorm.Title(d.Title)
	d.Description = textnorm.Description(d.Description)
	return d, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, app.CurrentHealth(time.Now()))
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToTaskDTOs(s.tasks.GetHistory(c.Request.Context())))
}

func (s *Server) handlePrioritized(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToTaskDTOs(s.tasks.GetPrioritizedTasks(c.Request.Context())))
}

// Tasks

func (s *Server) handleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, toDTOs(s.tasks.ListTasks(c.Request.Context())))
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, found := s.tasks.GetTask(c.Request.Context(), id)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(t))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	d, ok := bindItem(c)
	if !ok {
		return
	}
	draft, err := d.ToTask()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := s.tasks.CreateTask(c.Request.Context(), draft)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(created))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, ok := bindItem(c)
	if !ok {
		return
	}
	d.ID = int(id)
	t, err := d.ToTask()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	found, err := s.tasks.UpdateTask(c.Request.Context(), t)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(t))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	found, err := s.tasks.DeleteTask(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (s *Server) handleDeleteAllTasks(c *gin.Context) {
	if err := s.tasks.DeleteAllTasks(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All tasks deleted"})
}

// Epics

func (s *Server) handleListEpics(c *gin.Context) {
	c.JSON(http.StatusOK, toDTOs(s.tasks.ListEpics(c.Request.Context())))
}

func (s *Server) handleGetEpic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, found := s.tasks.GetEpic(c.Request.Context(), id)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(e))
}

func (s *Server) handleEpicSubtasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	subs, found := s.tasks.GetSubtasksByEpic(c.Request.Context(), id)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, toDTOs(subs))
}

func (s *Server) handleCreateEpic(c *gin.Context) {
	d, ok := bindItem(c)
	if !ok {
		return
	}
	draft, err := d.ToEpic()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := s.tasks.CreateEpic(c.Request.Context(), draft)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(created))
}

// handleUpdateEpic changes title and description only; derived fields in the
// body are ignored by the use case
func (s *Server) handleUpdateEpic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, ok := bindItem(c)
	if !ok {
		return
	}
	d.ID = int(id)
	u, err := d.ToEpicUpdate()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	found, err := s.tasks.UpdateEpic(c.Request.Context(), u)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Epic updated"})
}

func (s *Server) handleDeleteEpic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	found, err := s.tasks.DeleteEpic(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Epic deleted"})
}

func (s *Server) handleDeleteAllEpics(c *gin.Context) {
	if err := s.tasks.DeleteAllEpics(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All epics deleted"})
}

// Subtasks

func (s *Server) handleListSubtasks(c *gin.Context) {
	c.JSON(http.StatusOK, toDTOs(s.tasks.ListSubtasks(c.Request.Context())))
}

func (s *Server) handleGetSubtask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, found := s.tasks.GetSubtask(c.Request.Context(), id)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(st))
}

func (s *Server) handleCreateSubtask(c *gin.Context) {
	d, ok := bindItem(c)
	if !ok {
		return
	}
	draft, err := d.ToSubtask()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	created, epicFound, err := s.tasks.CreateSubtask(c.Request.Context(), draft)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !epicFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Epic not found"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(created))
}

func (s *Server) handleUpdateSubtask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, ok := bindItem(c)
	if !ok {
		return
	}
	d.ID = int(id)
	st, err := d.ToSubtask()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	stored, found, err := s.tasks.UpdateSubtask(c.Request.Context(), st)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(stored))
}

func (s *Server) handleDeleteSubtask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	found, err := s.tasks.DeleteSubtask(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted"})
}

func (s *Server) handleDeleteAllSubtasks(c *gin.Context) {
	if err := s.tasks.DeleteAllSubtasks(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All subtasks deleted"})
}
