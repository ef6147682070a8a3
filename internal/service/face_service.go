package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"github.com/sefazor/conference-backend/pkg/facerecog"
	"github.com/sefazor/conference-backend/pkg/storage"
	"github.com/sefazor/conference-backend/pkg/utils"
	"go.uber.org/zap"
)

type FaceRecognizer interface {
	Encode(ctx context.Context, imageBase64 string) facerecog.EncodeResult
	Authenticate(ctx context.Context, imageBase64 string, known []facerecog.KnownEncoding) facerecog.AuthenticateResult
}

type FaceService struct {
	users      *repository.UserRepository
	recognizer FaceRecognizer
	photos     storage.ObjectStore
	auth       *AuthService
	log        *zap.Logger
}

// NewFaceService wires face enrollment and login. photos may be nil, in which
// case enrollment photos are not kept.
func NewFaceService(
	users *repository.UserRepository,
	recognizer FaceRecognizer,
	photos storage.ObjectStore,
	auth *AuthService,
	log *zap.Logger,
) *FaceService {
	return &FaceService{
		users:      users,
		recognizer: recognizer,
		photos:     photos,
		auth:       auth,
		log:        log,
	}
}

// Enroll stores the face encoding of the image for userID.
func (s *FaceService) Enroll(ctx context.Context, userID uint, imageBase64 string) (*models.User, error) {
	result := s.recognizer.Encode(ctx, imageBase64)
	if !result.Success {
		if result.Unavailable {
			return nil, ErrFaceUnavailable
		}
		msg := result.Error
		if msg == "" {
			msg = "no face detected"
		}
		return nil, newValidationError("image", msg)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	previousKey := user.FacePhotoKey

	photoKey := s.storePhoto(ctx, userID, imageBase64)
	if err := s.users.UpdateFace(ctx, userID, result.Encoding, photoKey); err != nil {
		return nil, err
	}
	user.FaceEncoding = result.Encoding
	user.FacePhotoKey = photoKey

	if previousKey != "" && previousKey != photoKey && s.photos != nil {
		if err := s.photos.Delete(ctx, previousKey); err != nil {
			s.log.Warn("Could not delete previous enrollment photo", zap.String("key", previousKey), zap.Error(err))
		}
	}

	s.log.Info("Enrolled face", zap.Uint("user_id", userID), zap.Bool("photo_stored", photoKey != ""))
	return user, nil
}

// storePhoto uploads the enrollment image and returns its key, or "" when
// storage is disabled or the upload failed.
func (s *FaceService) storePhoto(ctx context.Context, userID uint, imageBase64 string) string {
	if s.photos == nil {
		return ""
	}

	raw, err := utils.DecodeImageBase64(imageBase64)
	if err != nil {
		s.log.Warn("Could not decode enrollment photo", zap.Uint("user_id", userID), zap.Error(err))
		return ""
	}

	key := storage.FacePhotoKey(userID)
	if err := s.photos.Put(ctx, key, raw, http.DetectContentType(raw)); err != nil {
		s.log.Warn("Could not store enrollment photo", zap.Uint("user_id", userID), zap.Error(err))
		return ""
	}
	return key
}

// Login matches the image against every enrolled user. Any failure, including
// an unreachable service, reads as not authenticated.
func (s *FaceService) Login(ctx context.Context, imageBase64 string) (*models.AuthResponse, error) {
	enrolled, err := s.users.ListWithFaceEncoding(ctx)
	if err != nil {
		return nil, err
	}

	known := make([]facerecog.KnownEncoding, 0, len(enrolled))
	for _, u := range enrolled {
		if u.HasFaceEncoding() {
			known = append(known, facerecog.KnownEncoding{UserID: u.ID, Encoding: u.FaceEncoding})
		}
	}
	if len(known) == 0 {
		return nil, ErrFaceNotRecognized
	}

	result := s.recognizer.Authenticate(ctx, imageBase64, known)
	if !result.Success || !result.Authenticated || result.UserID == nil {
		s.log.Info("Face login rejected",
			zap.Bool("service_ok", result.Success),
			zap.Bool("unavailable", result.Unavailable),
			zap.String("error", result.Error),
			zap.Float64("confidence", result.Confidence),
		)
		return nil, ErrFaceNotRecognized
	}

	user, err := s.users.GetByID(ctx, *result.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFaceNotRecognized
		}
		return nil, err
	}

	s.log.Info("User logged in with face", zap.Uint("user_id", user.ID), zap.Float64("confidence", result.Confidence))
	return s.auth.EstablishSession(user)
}
