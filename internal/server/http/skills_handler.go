package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillstream/internal/skills"
)

type skillSummary struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Path          string   `json:"path"`
	SkillDir      string   `json:"skill_dir"`
	AllowedTools  []string `json:"allowed_tools,omitempty"`
	Compatibility string   `json:"compatibility,omitempty"`
	License       string   `json:"license,omitempty"`
}

func summarize(props skills.Properties) skillSummary {
	return skillSummary{
		Name:          props.Name,
		Description:   props.Description,
		Path:          props.Path,
		SkillDir:      props.SkillDir,
		AllowedTools:  props.AllowedTools,
		Compatibility: props.Compatibility,
		License:       props.License,
	}
}

func (s *Server) handleListSkills(c *gin.Context) {
	list := s.library.List()
	summaries := make([]skillSummary, 0, len(list))
	for _, props := range list {
		summaries = append(summaries, summarize(props))
	}
	c.JSON(http.StatusOK, gin.H{"skills": summaries})
}

func (s *Server) handleSkillInfo(c *gin.Context) {
	name := c.Param("name")
	props, ok := s.library.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "skill not found: " + name})
		return
	}

	summary := summarize(props)
	if c.Query("instructions") == "true" {
		body, err := skills.LoadInstructions(props.Path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"skill": summary, "instructions": body})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skill": summary})
}

func (s *Server) handleSkillInstructions(c *gin.Context) {
	name := c.Param("name")
	props, ok := s.library.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "skill not found: " + name})
		return
	}

	body, err := skills.LoadInstructions(props.Path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": props.Name, "instructions": body})
}
