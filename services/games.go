package services

import (
	"errors"
	"fmt"

	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GameService manages the lottery catalog: games, their items, and the
// channel configuration each game publishes through.
type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

type gameInput struct {
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	IsActive           *bool   `json:"is_active"`
	TripletaEnabled    *bool   `json:"tripleta_enabled"`
	TripletaMultiplier float64 `json:"tripleta_multiplier"`
	TripletaDrawCount  int     `json:"tripleta_draw_count"`
}

func (s *GameService) CreateGame(c *fiber.Ctx) error {
	var input gameInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if input.Type != models.GameTypeAnimalitos && input.Type != models.GameTypeTriple {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("type must be %s or %s", models.GameTypeAnimalitos, models.GameTypeTriple),
		})
	}

	game := models.Game{
		ID:                 uuid.NewString(),
		Name:               input.Name,
		Slug:               slug.Make(input.Name),
		Type:               input.Type,
		IsActive:           true,
		TripletaMultiplier: input.TripletaMultiplier,
		TripletaDrawCount:  input.TripletaDrawCount,
	}
	if input.TripletaEnabled != nil {
		game.TripletaEnabled = *input.TripletaEnabled
	}
	if game.TripletaEnabled && game.TripletaDrawCount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tripleta_draw_count must be positive"})
	}

	if err := s.DB.Create(&game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create game"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func (s *GameService) GetAllGames(c *fiber.Ctx) error {
	var games []models.Game
	q := s.DB
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetGameByID(c *fiber.Ctx) error {
	var game models.Game
	err := s.DB.Preload("Items").First(&game, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(game)
}

func (s *GameService) UpdateGame(c *fiber.Ctx) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	var input gameInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if input.Name != "" {
		game.Name = input.Name
		game.Slug = slug.Make(input.Name)
	}
	if input.IsActive != nil {
		game.IsActive = *input.IsActive
	}
	if input.TripletaEnabled != nil {
		game.TripletaEnabled = *input.TripletaEnabled
	}
	if input.TripletaMultiplier > 0 {
		game.TripletaMultiplier = input.TripletaMultiplier
	}
	if input.TripletaDrawCount > 0 {
		game.TripletaDrawCount = input.TripletaDrawCount
	}

	if err := s.DB.Save(&game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update game"})
	}
	return c.JSON(game)
}

// ===== Game items =====

type gameItemInput struct {
	Number     string  `json:"number"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	IsActive   *bool   `json:"is_active"`
}

func (s *GameService) CreateGameItem(c *fiber.Ctx) error {
	gameID := c.Params("id")

	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	var input gameItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.Number == "" || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "number and name are required"})
	}
	if input.Multiplier <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multiplier must be positive"})
	}

	var dup int64
	s.DB.Model(&models.GameItem{}).Where("game_id = ? AND number = ?", gameID, input.Number).Count(&dup)
	if dup > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "number already exists for this game"})
	}

	item := models.GameItem{
		ID:         uuid.NewString(),
		GameID:     gameID,
		Number:     input.Number,
		Name:       input.Name,
		Multiplier: input.Multiplier,
		IsActive:   true,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create item"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *GameService) GetGameItems(c *fiber.Ctx) error {
	var items []models.GameItem
	q := s.DB.Where("game_id = ?", c.Params("id"))
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("number asc").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch items"})
	}
	return c.JSON(items)
}

func (s *GameService) UpdateGameItem(c *fiber.Ctx) error {
	var item models.GameItem
	if err := s.DB.First(&item, "id = ?", c.Params("item_id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}

	var input gameItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Multiplier > 0 {
		item.Multiplier = input.Multiplier
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := s.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update item"})
	}
	return c.JSON(item)
}

// ===== Channel instances =====

type instanceInput struct {
	InstanceID  string `json:"instance_id"`
	ChannelType string `json:"channel_type"`
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
}

func (s *GameService) CreateChannelInstance(c *fiber.Ctx) error {
	var input instanceInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.InstanceID == "" || input.ChannelType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "instance_id and channel_type are required"})
	}
	if !models.IsValidChannelType(input.ChannelType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown channel_type"})
	}

	instance := models.ChannelInstance{
		ID:          uuid.NewString(),
		InstanceID:  input.InstanceID,
		ChannelType: input.ChannelType,
		AccessToken: input.AccessToken,
		AccountID:   input.AccountID,
		Status:      models.InstanceStatusDisconnected,
	}
	if err := s.DB.Create(&instance).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create instance"})
	}
	return c.Status(fiber.StatusCreated).JSON(instance)
}

func (s *GameService) GetChannelInstances(c *fiber.Ctx) error {
	var instances []models.ChannelInstance
	if err := s.DB.Find(&instances).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch instances"})
	}
	return c.JSON(instances)
}

// SetInstanceStatus connects, disconnects or pauses an instance. A paused
// instance makes the publication engine skip its sends without counting
// retries.
func (s *GameService) SetInstanceStatus(c *fiber.Ctx) error {
	action := c.Params("action")
	status := ""
	switch action {
	case "connect":
		status = models.InstanceStatusConnected
	case "disconnect":
		status = models.InstanceStatusDisconnected
	case "pause":
		status = models.InstanceStatusPaused
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid action, use connect, disconnect or pause"})
	}

	result := s.DB.Model(&models.ChannelInstance{}).
		Where("instance_id = ?", c.Params("instance_id")).
		Update("status", status)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update instance"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "instance not found"})
	}
	return c.JSON(fiber.Map{"instance_id": c.Params("instance_id"), "status": status})
}

// ===== Game channels =====

type gameChannelInput struct {
	ChannelType     string   `json:"channel_type"`
	InstanceID      string   `json:"instance_id"`
	ChatID          string   `json:"chat_id"`
	Recipients      []string `json:"recipients"`
	MessageTemplate string   `json:"message_template"`
	IsActive        *bool    `json:"is_active"`
}

func (s *GameService) CreateGameChannel(c *fiber.Ctx) error {
	gameID := c.Params("id")

	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	var input gameChannelInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if !models.IsValidChannelType(input.ChannelType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown channel_type"})
	}
	var instCount int64
	s.DB.Model(&models.ChannelInstance{}).
		Where("instance_id = ? AND channel_type = ?", input.InstanceID, input.ChannelType).
		Count(&instCount)
	if instCount == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no matching channel instance"})
	}

	channel := models.GameChannel{
		ID:              uuid.NewString(),
		GameID:          gameID,
		ChannelType:     input.ChannelType,
		InstanceID:      input.InstanceID,
		ChatID:          input.ChatID,
		Recipients:      input.Recipients,
		MessageTemplate: input.MessageTemplate,
		IsActive:        true,
	}
	if err := s.DB.Create(&channel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create channel"})
	}
	return c.Status(fiber.StatusCreated).JSON(channel)
}

func (s *GameService) GetGameChannels(c *fiber.Ctx) error {
	var gameChannels []models.GameChannel
	err := s.DB.Where("game_id = ?", c.Params("id")).Find(&gameChannels).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch channels"})
	}
	return c.JSON(gameChannels)
}

func (s *GameService) UpdateGameChannel(c *fiber.Ctx) error {
	var channel models.GameChannel
	if err := s.DB.First(&channel, "id = ?", c.Params("channel_id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
	}

	var input gameChannelInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.ChatID != "" {
		channel.ChatID = input.ChatID
	}
	if input.Recipients != nil {
		channel.Recipients = input.Recipients
	}
	if input.MessageTemplate != "" {
		channel.MessageTemplate = input.MessageTemplate
	}
	if input.IsActive != nil {
		channel.IsActive = *input.IsActive
	}

	if err := s.DB.Save(&channel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update channel"})
	}
	return c.JSON(channel)
}
