package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeev/todolist/internal/server/models"
	"github.com/avdeev/todolist/internal/server/validation"
)

type signupRequest struct {
	FirstName       string `json:"firstName" form:"firstName"`
	LastName        string `json:"lastName" form:"lastName"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Terms           string `json:"terms" form:"terms"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type todoRequest struct {
	Text    string `json:"todo" form:"todo"`
	DueDate string `json:"date" form:"date"`
}

type todoResponse struct {
	ID        string `json:"id"`
	Text      string `json:"todo"`
	DueDate   string `json:"date,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type todoListResponse struct {
	UserName string         `json:"userName"`
	Todos    []todoResponse `json:"todos"`
}

func toTodoResponse(t *models.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Text:      t.Text,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request"})
	}

	form := validation.SignupForm{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		TermsAccepted:   req.Terms == "on" || strings.EqualFold(req.Terms, "true"),
	}

	user, err := s.users.Register(c.Request().Context(), form)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			// Re-rendering the form needs the submitted values back, minus
			// the password fields.
			return c.JSON(http.StatusUnprocessableEntity, validationBody{
				Errors: verrs,
				Values: form.PublicValues(),
			})
		}
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"id": user.ID, "email": user.Email})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request"})
	}

	token, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	s.setSessionCookie(c, token)
	return c.NoContent(http.StatusNoContent)
}

// handleLogout clears the session cookie. The endpoint is deliberately not
// behind RequireSession: logging out with a dead session must still succeed.
func (s *Server) handleLogout(c echo.Context) error {
	s.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListTodos(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return s.unauthenticated(c)
	}

	ctx := c.Request().Context()
	list, err := s.todos.ListByOwner(ctx, identity)
	if err != nil {
		return s.writeError(c, err)
	}

	resp := todoListResponse{Todos: make([]todoResponse, 0, len(list))}
	for _, t := range list {
		resp.Todos = append(resp.Todos, toTodoResponse(t))
	}

	if user, err := s.users.Get(ctx, identity.UserID); err == nil {
		resp.UserName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateTodo(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return s.unauthenticated(c)
	}

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request"})
	}

	todo, err := s.todos.Create(c.Request().Context(), identity, req.Text, req.DueDate)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toTodoResponse(todo))
}

func (s *Server) handleGetTodo(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return s.unauthenticated(c)
	}

	todo, err := s.todos.GetOwned(c.Request().Context(), identity, c.Param("todoId"))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

func (s *Server) handleUpdateTodo(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return s.unauthenticated(c)
	}

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request"})
	}

	if err := s.todos.Update(c.Request().Context(), identity, c.Param("todoId"), req.Text, req.DueDate); err != nil {
		return s.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteTodo(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return s.unauthenticated(c)
	}

	if err := s.todos.Delete(c.Request().Context(), identity, c.Param("todoId")); err != nil {
		return s.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
