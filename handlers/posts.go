package handlers

import (
	"net/http"

	"arzaq-api/apperr"
	"arzaq-api/middleware"
	"arzaq-api/models"
	"arzaq-api/policy"
	"arzaq-api/services"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Text              string `json:"text" binding:"required"`
	Image             string `json:"image"`
	Location          string `json:"location"`
	RestaurantID      *uint  `json:"restaurant_id"`
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostView adds feed metadata to a post
type PostView struct {
	models.Post
	AuthorName    string        `json:"author_name"`
	LikesCount    int64         `json:"likes_count"`
	CommentsCount int64         `json:"comments_count"`
	IsLiked       bool          `json:"is_liked"`
	Comments      []CommentView `json:"comments"`
}

type CommentView struct {
	ID         uint   `json:"id"`
	PostID     uint   `json:"post_id"`
	AuthorID   uint   `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

// CreatePost publishes a feed post for the authenticated user
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	post := models.Post{
		AuthorID:          middleware.Actor(c).ID,
		Text:              req.Text,
		Image:             req.Image,
		Location:          req.Location,
		RestaurantID:      req.RestaurantID,
		RestaurantName:    req.RestaurantName,
		RestaurantAddress: req.RestaurantAddress,
	}
	if err := h.DB.Create(&post).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListPosts returns the feed, newest first, with like/comment detail for
// the caller (anonymous callers just see is_liked=false)
func (h *Handler) ListPosts(c *gin.Context) {
	var posts []models.Post
	h.DB.Preload("Author").Order("created_at desc").
		Limit(pageLimit(c)).Offset(pageOffset(c)).Find(&posts)

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, h.postView(&posts[i], middleware.Actor(c).ID))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "posts": views})
}

// GetPost returns one post with its feed metadata
func (h *Handler) GetPost(c *gin.Context) {
	var post models.Post
	if err := h.DB.Preload("Author").First(&post, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "post not found"))
		return
	}
	c.JSON(http.StatusOK, h.postView(&post, middleware.Actor(c).ID))
}

// DeletePost removes a post (author or admin) and best-effort deletes its
// image
func (h *Handler) DeletePost(c *gin.Context) {
	var post models.Post
	if err := h.DB.First(&post, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "post not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   policy.PostDelete,
		OwnerIDs: []uint{post.AuthorID},
	}); err != nil {
		apperr.Write(c, err)
		return
	}

	if post.Image != "" {
		if err := h.Images.DeleteImage(c.Request.Context(), services.PublicIDFromURL(post.Image)); err != nil {
			h.Log.Warn().Err(err).Uint("post_id", post.ID).Msg("failed to delete post image")
		}
	}
	if err := h.DB.Select("Likes", "Comments").Delete(&post).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike flips the caller's like on a post. The (post, user) unique
// index makes a double-like race surface as a conflict instead of a
// duplicate row.
func (h *Handler) ToggleLike(c *gin.Context) {
	actor := middleware.Actor(c)

	var post models.Post
	if err := h.DB.First(&post, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "post not found"))
		return
	}

	var isLiked bool
	var existing models.PostLike
	if err := h.DB.Where("post_id = ? AND user_id = ?", post.ID, actor.ID).
		First(&existing).Error; err == nil {
		if err := h.DB.Delete(&existing).Error; err != nil {
			apperr.Write(c, err)
			return
		}
	} else {
		like := models.PostLike{PostID: post.ID, UserID: actor.ID}
		if err := h.DB.Create(&like).Error; err != nil {
			apperr.Write(c, apperr.New(apperr.KindConflict, "post already liked"))
			return
		}
		isLiked = true
	}

	var likesCount int64
	h.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likesCount)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"is_liked":    isLiked,
		"likes_count": likesCount,
	})
}

// CreateComment adds a comment to a post
func (h *Handler) CreateComment(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	var post models.Post
	if err := h.DB.First(&post, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "post not found"))
		return
	}

	comment := models.PostComment{
		PostID:   post.ID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment (author or admin)
func (h *Handler) DeleteComment(c *gin.Context) {
	var comment models.PostComment
	if err := h.DB.Where("id = ? AND post_id = ?", c.Param("commentId"), c.Param("id")).
		First(&comment).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "comment not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   policy.CommentDelete,
		OwnerIDs: []uint{comment.AuthorID},
	}); err != nil {
		apperr.Write(c, err)
		return
	}
	if err := h.DB.Delete(&comment).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPostImage stores a post image and returns its URL
func (h *Handler) UploadPostImage(c *gin.Context) {
	h.uploadImage(c, "arzaq/posts")
}

func (h *Handler) postView(post *models.Post, viewerID uint) PostView {
	var likesCount, commentsCount int64
	h.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likesCount)
	h.DB.Model(&models.PostComment{}).Where("post_id = ?", post.ID).Count(&commentsCount)

	isLiked := false
	if viewerID != 0 {
		var like models.PostLike
		isLiked = h.DB.Where("post_id = ? AND user_id = ?", post.ID, viewerID).
			First(&like).Error == nil
	}

	var comments []models.PostComment
	h.DB.Preload("Author").Where("post_id = ?", post.ID).Find(&comments)
	commentViews := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		commentViews = append(commentViews, CommentView{
			ID:         comment.ID,
			PostID:     comment.PostID,
			AuthorID:   comment.AuthorID,
			AuthorName: comment.Author.FullName,
			Text:       comment.Text,
			CreatedAt:  comment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return PostView{
		Post:          *post,
		AuthorName:    post.Author.FullName,
		LikesCount:    likesCount,
		CommentsCount: commentsCount,
		IsLiked:       isLiked,
		Comments:      commentViews,
	}
}
