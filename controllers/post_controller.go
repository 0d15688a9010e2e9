package controllers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/websocket"
)

// PostController handles authoring, publishing and reading posts
type PostController struct {
	DB  *mongo.Database
	Hub *websocket.Hub
}

// NewPostController creates a new post controller
func NewPostController(db *mongo.Database, hub *websocket.Hub) *PostController {
	return &PostController{DB: db, Hub: hub}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// makeSlug builds a URL slug from the title with a short random suffix
// to keep slugs unique without a lookup
func makeSlug(title string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug + "-" + uuid.NewString()[:8]
}

// CreatePost creates a draft post for the authenticated user
func (pc *PostController) CreatePost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	var req models.PostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	now := time.Now()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Title:     req.Title,
		Slug:      makeSlug(req.Title),
		Content:   req.Content,
		Tags:      req.Tags,
		Status:    models.PostStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := pc.DB.Collection("posts").InsertOne(ctx, post); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create post",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Post created successfully",
		Data:    post,
	})
}

// UpdatePost edits the title, content or tags of the author's own post
func (pc *PostController) UpdatePost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	var req models.PostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Content != "" {
		set["content"] = req.Content
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}

	result, err := pc.DB.Collection("posts").UpdateOne(ctx,
		bson.M{"_id": postID, "authorId": authorID},
		bson.M{"$set": set},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update post",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found or not yours",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post updated successfully",
	})
}

// PublishPost moves a draft to published and stamps publishedAt. The
// transition is one-way in the normal flow; views only accumulate after
// this point.
func (pc *PostController) PublishPost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	now := time.Now()
	result, err := pc.DB.Collection("posts").UpdateOne(ctx,
		bson.M{"_id": postID, "authorId": authorID, "status": models.PostStatusDraft},
		bson.M{"$set": bson.M{
			"status":      models.PostStatusPublished,
			"publishedAt": now,
			"updatedAt":   now,
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to publish post",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Draft not found or already published",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post published successfully",
	})
}

// GetPost returns one post; drafts are only visible to their author
func (pc *PostController) GetPost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	var post models.Post
	if err := pc.DB.Collection("posts").FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found",
		})
	}

	if post.Status != models.PostStatusPublished {
		claims := middleware.GetUserFromToken(c)
		if claims == nil || claims.UserID != post.AuthorID.Hex() {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Post not found",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post retrieved successfully",
		Data:    post,
	})
}

// GetPublishedPosts lists published posts, optionally filtered by tag or
// author
func (pc *PostController) GetPublishedPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"status": models.PostStatusPublished}
	if tag := c.QueryParam("tag"); tag != "" {
		filter["tags"] = tag
	}
	if author := c.QueryParam("author"); author != "" {
		authorID, err := primitive.ObjectIDFromHex(author)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid author ID",
			})
		}
		filter["authorId"] = authorID
	}

	cursor, err := pc.DB.Collection("posts").Find(ctx, filter,
		&options.FindOptions{Sort: bson.M{"publishedAt": -1}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode posts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Posts retrieved successfully",
		Data:    posts,
	})
}

// GetMyPosts lists the authenticated author's posts, drafts included
func (pc *PostController) GetMyPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	cursor, err := pc.DB.Collection("posts").Find(ctx, bson.M{"authorId": authorID},
		&options.FindOptions{Sort: bson.M{"createdAt": -1}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode posts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Posts retrieved successfully",
		Data:    posts,
	})
}

// DeletePost removes the author's own draft. Published posts stay; their
// views have already been credited.
func (pc *PostController) DeletePost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	result, err := pc.DB.Collection("posts").DeleteOne(ctx,
		bson.M{"_id": postID, "authorId": authorID, "status": models.PostStatusDraft})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete post",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Draft not found or not yours",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Draft deleted successfully",
	})
}

// AddComment appends a comment to a published post
func (pc *PostController) AddComment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	var post models.Post
	err = pc.DB.Collection("posts").FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "status": models.PostStatusPublished},
		bson.M{"$push": bson.M{"comments": comment}},
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Post not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add comment",
		})
	}

	if pc.Hub != nil && post.AuthorID != userID {
		pc.Hub.NotifyNewComment(post.AuthorID, map[string]interface{}{
			"postId":  postID.Hex(),
			"comment": comment,
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Comment added successfully",
		Data:    comment,
	})
}

// ToggleLike adds or removes the user's like on a published post
func (pc *PostController) ToggleLike(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	posts := pc.DB.Collection("posts")

	var post models.Post
	if err := posts.FindOne(ctx, bson.M{"_id": postID, "status": models.PostStatusPublished}).Decode(&post); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found",
		})
	}

	liked := false
	for _, id := range post.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	var update bson.M
	message := "Post liked"
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
		message = "Like removed"
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}

	if _, err := posts.UpdateOne(ctx, bson.M{"_id": postID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update like",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
	})
}
