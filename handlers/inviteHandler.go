package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"circleserver/middlewares"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errInviteCodeUnusable = errors.New("invite code unusable")
	errInviteDuplicate    = errors.New("invite already exists")
)

// 招待コードの生成（3バイト乱数の16進表現、6文字大文字）。
// 未使用コードとの重複チェックは行わない。codeカラムのユニーク索引が
// 万一の衝突時に誤った許可ではなくエラーとして顕在化させる。
func newInviteCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// CreateInviteCode は使い捨ての招待コードを発行するハンドラーです。
func CreateInviteCode(c *gin.Context, db *gorm.DB, cfg models.Config, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	code, err := newInviteCode()
	if err != nil {
		logger.Error("招待コードの生成に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	inviteCode := models.InviteCode{
		Code:       code,
		FromUserID: identity.UserID,
		ToUserID:   nil,
		ExpiresAt:  time.Now().Add(cfg.InviteCodeValidity()),
	}
	if err := db.Create(&inviteCode).Error; err != nil {
		logger.Error("招待コードの保存に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	logger.Info("招待コードを発行しました",
		zap.String("code", inviteCode.Code),
		zap.Uint("fromUserID", identity.UserID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Success",
		"data": gin.H{
			"code":      inviteCode.Code,
			"expiresAt": inviteCode.ExpiresAt,
		},
	})
}

// AcceptInviteCode は招待コードを受諾し、招待エッジを作成するハンドラーです。
// コードの請求は条件付きUPDATE（to_user_idがまだNULLの場合のみ）で行うため、
// 同一コードへの同時受諾は必ず片方だけが成功します。
func AcceptInviteCode(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invite code is required"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// アトミックな請求。書き込み時点でまだ未使用・未期限切れの場合のみ成功する。
		claim := tx.Model(&models.InviteCode{}).
			Where("code = ? AND to_user_id IS NULL AND expires_at > ?", code, time.Now()).
			Update("to_user_id", identity.UserID)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return errInviteCodeUnusable
		}

		var inviteCode models.InviteCode
		if err := tx.Where("code = ?", code).First(&inviteCode).Error; err != nil {
			return err
		}

		// 同じ相手を二重に招待することはできない
		var existing models.Invite
		err := tx.Where("from_user_id = ? AND to_user_id = ?", inviteCode.FromUserID, identity.UserID).
			First(&existing).Error
		if err == nil {
			return errInviteDuplicate
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&models.Invite{
			FromUserID: inviteCode.FromUserID,
			ToUserID:   identity.UserID,
		}).Error
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Success"})
	case errors.Is(err, errInviteCodeUnusable):
		c.JSON(http.StatusNotFound, gin.H{"message": "Invalid or expired invite code"})
	case errors.Is(err, errInviteDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeInviteDuplicate})
	default:
		logger.Error("招待コードの受諾に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
	}
}

// 招待一覧のDTO組み立て。fromUser/toUser両方のユーザー情報を付ける。
func formatInvites(db *gorm.DB, invites []models.Invite) []gin.H {
	formatted := make([]gin.H, 0, len(invites))
	for _, invite := range invites {
		var fromUser, toUser models.User
		db.Select("id", "nickname", "email").First(&fromUser, invite.FromUserID)
		db.Select("id", "nickname", "email").First(&toUser, invite.ToUserID)

		formatted = append(formatted, gin.H{
			"id":        invite.ID,
			"createdAt": invite.CreatedAt,
			"fromUser": gin.H{
				"id":       fromUser.ID,
				"nickname": fromUser.Nickname,
				"email":    fromUser.Email,
			},
			"toUser": gin.H{
				"id":       toUser.ID,
				"nickname": toUser.Nickname,
				"email":    toUser.Email,
			},
		})
	}
	return formatted
}

// GetInvitesFromMe は自分が招待した相手の一覧を返すハンドラーです。
func GetInvitesFromMe(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	_, limit, offset := pageParams(c)

	var totalCount int64
	db.Model(&models.Invite{}).Where("from_user_id = ?", identity.UserID).Count(&totalCount)

	var invites []models.Invite
	if err := db.Where("from_user_id = ?", identity.UserID).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&invites).Error; err != nil {
		logger.Error("招待一覧の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"invites":    formatInvites(db, invites),
			"totalCount": totalCount,
		},
	})
}

// GetInvitesToMe は自分を招待したユーザーの一覧を返すハンドラーです。
func GetInvitesToMe(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	_, limit, offset := pageParams(c)

	var totalCount int64
	db.Model(&models.Invite{}).Where("to_user_id = ?", identity.UserID).Count(&totalCount)

	var invites []models.Invite
	if err := db.Where("to_user_id = ?", identity.UserID).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&invites).Error; err != nil {
		logger.Error("招待一覧の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"invites":    formatInvites(db, invites),
			"totalCount": totalCount,
		},
	})
}

// DeleteInvite は自分が作成した招待エッジを削除するハンドラーです。
func DeleteInvite(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	inviteID, err := strconv.Atoi(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "inviteId is required"})
		return
	}

	// 自分が招待したエッジだけ削除できる
	var invite models.Invite
	if err := db.Where("id = ? AND from_user_id = ?", inviteID, identity.UserID).First(&invite).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Invite not found or not authorized"})
		return
	}

	if err := db.Delete(&invite).Error; err != nil {
		logger.Error("招待の削除に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}
