package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/notifications"
	"github.com/ripplehq/ripple/backend/internal/repositories"
)

// InteractionHandler handles likes, dislikes, comments, retweets and bookmarks
type InteractionHandler struct {
	interactionRepository repositories.InteractionRepository
	commentRepository     repositories.CommentRepository
	shareRepository       repositories.ShareRepository
	bookmarkRepository    repositories.BookmarkRepository
	postRepository        repositories.PostRepository
	notificationManager   *notifications.Manager
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(
	interactionRepo repositories.InteractionRepository,
	commentRepo repositories.CommentRepository,
	shareRepo repositories.ShareRepository,
	bookmarkRepo repositories.BookmarkRepository,
	postRepo repositories.PostRepository,
	manager *notifications.Manager,
) *InteractionHandler {
	return &InteractionHandler{
		interactionRepository: interactionRepo,
		commentRepository:     commentRepo,
		shareRepository:       shareRepo,
		bookmarkRepository:    bookmarkRepo,
		postRepository:        postRepo,
		notificationManager:   manager,
	}
}

// RegisterInteractionRoutes registers interaction-related routes
func (h *InteractionHandler) RegisterInteractionRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.POST("/posts/:id/dislike", h.DislikePost)
	g.DELETE("/posts/:id/dislike", h.UndislikePost)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/comments/:id/answers", h.AnswerComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/posts/:id/retweet", h.RetweetPost)
	g.DELETE("/posts/:id/retweet", h.UnretweetPost)
	g.POST("/posts/:id/bookmark", h.BookmarkPost)
	g.DELETE("/posts/:id/bookmark", h.UnbookmarkPost)
	g.GET("/bookmarks", h.GetBookmarks)
}

// LikePost records a like on a post and notifies the author
func (h *InteractionHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	existing, err := h.interactionRepository.FindInteraction(ctx, postID, currentUserID, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked")
	}

	// A like replaces any standing dislike.
	if removed, err := h.interactionRepository.DeleteInteraction(ctx, postID, currentUserID, false); err == nil && removed {
		h.postRepository.IncrementCounter(ctx, postID, "dislikes_count", -1)
	}

	interaction := &models.Interaction{PostID: postID, UserID: currentUserID, Like: true}
	if err := h.interactionRepository.CreateInteraction(ctx, interaction); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementCounter(ctx, postID, "likes_count", 1)

	if post.AuthorID != currentUserID {
		h.notificationManager.SendNotification(ctx, notifications.SendInput{
			Sender:   currentUserID,
			Receiver: post.AuthorID,
			Kind:     models.KindLike,
			PostID:   postID,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": interaction})
}

// UnlikePost removes a like and retracts the matching notification
func (h *InteractionHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	removed, err := h.interactionRepository.DeleteInteraction(ctx, postID, currentUserID, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	}
	h.postRepository.IncrementCounter(ctx, postID, "likes_count", -1)

	h.notificationManager.DeleteNotification(ctx, currentUserID, post.AuthorID, models.KindLike, postID)

	return c.NoContent(http.StatusNoContent)
}

// DislikePost records a dislike on a post. Dislikes do not notify.
func (h *InteractionHandler) DislikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	existing, err := h.interactionRepository.FindInteraction(ctx, postID, currentUserID, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Post already disliked")
	}

	if removed, err := h.interactionRepository.DeleteInteraction(ctx, postID, currentUserID, true); err == nil && removed {
		h.postRepository.IncrementCounter(ctx, postID, "likes_count", -1)
		h.notificationManager.DeleteNotification(ctx, currentUserID, post.AuthorID, models.KindLike, postID)
	}

	interaction := &models.Interaction{PostID: postID, UserID: currentUserID, Like: false}
	if err := h.interactionRepository.CreateInteraction(ctx, interaction); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementCounter(ctx, postID, "dislikes_count", 1)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": interaction})
}

// UndislikePost removes a dislike
func (h *InteractionHandler) UndislikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return httpError(err)
	}

	removed, err := h.interactionRepository.DeleteInteraction(ctx, postID, currentUserID, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Dislike not found")
	}
	h.postRepository.IncrementCounter(ctx, postID, "dislikes_count", -1)

	return c.NoContent(http.StatusNoContent)
}

// CreateComment adds a comment to a post and notifies the author
func (h *InteractionHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := &models.Comment{PostID: postID, AuthorID: currentUserID, Content: req.Content}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementCounter(ctx, postID, "comments_count", 1)

	if post.AuthorID != currentUserID {
		h.notificationManager.SendNotification(ctx, notifications.SendInput{
			Sender:    currentUserID,
			Receiver:  post.AuthorID,
			Kind:      models.KindComment,
			PostID:    postID,
			CommentID: comment.ID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetComments returns top-level comments for a post
func (h *InteractionHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"comments": comments}})
}

// AnswerComment replies to a comment and notifies the comment's author
func (h *InteractionHandler) AnswerComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	parentID := c.Param("id")

	parent, err := h.commentRepository.GetCommentByID(ctx, parentID)
	if err != nil {
		return httpError(err)
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	answer := &models.Comment{
		PostID:   parent.PostID,
		AuthorID: currentUserID,
		Content:  req.Content,
		ParentID: parentID,
	}
	if err := h.commentRepository.CreateComment(ctx, answer); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.commentRepository.AddAnswer(ctx, parentID, answer.ID.Hex()); err != nil {
		return httpError(err)
	}

	if parent.AuthorID != currentUserID {
		h.notificationManager.SendNotification(ctx, notifications.SendInput{
			Sender:    currentUserID,
			Receiver:  parent.AuthorID,
			Kind:      models.KindAnswer,
			PostID:    parent.PostID,
			CommentID: answer.ID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": answer})
}

// DeleteComment removes the authenticated user's own comment and retracts
// the matching notification
func (h *InteractionHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	commentID := c.Param("id")

	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return httpError(err)
	}
	if comment.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(ctx, commentID); err != nil {
		return httpError(err)
	}
	h.postRepository.IncrementCounter(ctx, comment.PostID, "comments_count", -1)

	if post, err := h.postRepository.GetPostByID(ctx, comment.PostID); err == nil {
		kind := models.KindComment
		receiver := post.AuthorID
		if comment.ParentID != "" {
			kind = models.KindAnswer
			if parent, err := h.commentRepository.GetCommentByID(ctx, comment.ParentID); err == nil {
				receiver = parent.AuthorID
			}
		}
		h.notificationManager.DeleteNotification(ctx, currentUserID, receiver, kind, comment.PostID)
	}

	return c.NoContent(http.StatusNoContent)
}

// RetweetPost shares a post and notifies the author
func (h *InteractionHandler) RetweetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	existing, err := h.shareRepository.FindShare(ctx, postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Post already retweeted")
	}

	share := &models.Share{PostID: postID, UserID: currentUserID}
	if err := h.shareRepository.CreateShare(ctx, share); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementCounter(ctx, postID, "shares_count", 1)

	if post.AuthorID != currentUserID {
		h.notificationManager.SendNotification(ctx, notifications.SendInput{
			Sender:   currentUserID,
			Receiver: post.AuthorID,
			Kind:     models.KindRetweet,
			PostID:   postID,
			ShareID:  share.ID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": share})
}

// UnretweetPost removes a retweet and retracts the matching notification
func (h *InteractionHandler) UnretweetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	removed, err := h.shareRepository.DeleteShare(ctx, postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Retweet not found")
	}
	h.postRepository.IncrementCounter(ctx, postID, "shares_count", -1)

	h.notificationManager.DeleteNotification(ctx, currentUserID, post.AuthorID, models.KindRetweet, postID)

	return c.NoContent(http.StatusNoContent)
}

// BookmarkPost saves a post for the authenticated user and notifies the author
func (h *InteractionHandler) BookmarkPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	existing, err := h.bookmarkRepository.FindBookmark(ctx, postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Post already bookmarked")
	}

	bookmark := &models.Bookmark{PostID: postID, UserID: currentUserID}
	if err := h.bookmarkRepository.CreateBookmark(ctx, bookmark); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.AuthorID != currentUserID {
		h.notificationManager.SendNotification(ctx, notifications.SendInput{
			Sender:   currentUserID,
			Receiver: post.AuthorID,
			Kind:     models.KindBookmark,
			PostID:   postID,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": bookmark})
}

// UnbookmarkPost removes a bookmark and retracts the matching notification
func (h *InteractionHandler) UnbookmarkPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	removed, err := h.bookmarkRepository.DeleteBookmark(ctx, postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Bookmark not found")
	}

	h.notificationManager.DeleteNotification(ctx, currentUserID, post.AuthorID, models.KindBookmark, postID)

	return c.NoContent(http.StatusNoContent)
}

// GetBookmarks returns the authenticated user's bookmarks
func (h *InteractionHandler) GetBookmarks(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	bookmarks, err := h.bookmarkRepository.GetBookmarksByUser(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarks": bookmarks}})
}
