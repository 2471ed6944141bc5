package beneficiarios

import (
	"context"
	"errors"
	"strings"

	"impacto-backend/internal/models"
	"impacto-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrAssistenteNotFound   = errors.New("Assistente não encontrado ou inativo")
	ErrAssistenteRequired   = errors.New("assistente_id é obrigatório")
	ErrBeneficiarioNotFound = errors.New("Beneficiário não encontrado")
	ErrOrgNotFound          = errors.New("ONG não encontrada")
	ErrEmailTaken           = errors.New("Email já cadastrado")
	ErrCPFTaken             = errors.New("CPF já cadastrado")
	ErrInvalidCPF           = errors.New("CPF inválido: deve conter 11 dígitos")
	ErrForbiddenAssign      = errors.New("Assistente só pode criar beneficiários vinculados a si mesmo")
	ErrForbiddenScope       = errors.New("Acesso negado a beneficiários de outro assistente")
	ErrForbiddenUnlink      = errors.New("Somente administradores podem desvincular beneficiários")
	ErrAlreadyLinked        = errors.New("Beneficiário já vinculado a outro assistente")
)

// Service manages beneficiário accounts and their assistant links.
type Service struct {
	DB *gorm.DB
}

// ListFilter narrows the beneficiário listing. Assistentes are always
// scoped to their own caseload regardless of AssistenteID.
type ListFilter struct {
	Search       string
	AssistenteID *uint
	Page         int
	PageSize     int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// List returns beneficiários visible to the actor, with the total count
// before pagination.
func (s *Service) List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.User, int64, error) {
	filter.normalize()

	query := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleBeneficiario)

	if actor.Role == models.RoleAssistente {
		query = query.Where("assistente_id = ?", actor.ID)
	} else if filter.AssistenteID != nil {
		query = query.Where("assistente_id = ?", *filter.AssistenteID)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(social_name) LIKE ? OR LOWER(email) LIKE ? OR cpf LIKE ?",
			like, like, like, "%"+filter.Search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("id ASC").Offset(offset).Limit(filter.PageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ensureAssistente verifies the target is an active assistente.
func (s *Service) ensureAssistente(ctx context.Context, id uint) error {
	var assistente models.User
	err := s.DB.WithContext(ctx).
		Where("id = ? AND role = ? AND is_active = ?", id, models.RoleAssistente, true).
		First(&assistente).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssistenteNotFound
	}
	return err
}

// CreateInput carries the fields to register a beneficiário on behalf
// of an assistant or admin.
type CreateInput struct {
	Email        string
	Name         string
	PasswordHash string
	SocialName   *string
	Pronoun      *string
	CPF          *string
	AssistenteID *uint
	OrgID        *uint
}

// Create registers a beneficiário. Assistentes may only link the new
// account to themselves; admins may link to any active assistente.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	if in.AssistenteID == nil {
		if actor.Role != models.RoleAssistente {
			return nil, ErrAssistenteRequired
		}
		// Assistentes implicitly take on the beneficiários they create.
		id := actor.ID
		in.AssistenteID = &id
	} else {
		if actor.Role == models.RoleAssistente && *in.AssistenteID != actor.ID {
			return nil, ErrForbiddenAssign
		}
		if err := s.ensureAssistente(ctx, *in.AssistenteID); err != nil {
			return nil, err
		}
	}

	if in.OrgID != nil {
		var org models.Org
		if err := db.First(&org, *in.OrgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrgNotFound
			}
			return nil, err
		}
	}

	var existing models.User
	if err := db.Where("LOWER(email) = ?", strings.ToLower(in.Email)).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var cpf *string
	if in.CPF != nil {
		normalized, ok := validation.NormalizeCPF(*in.CPF)
		if !ok {
			return nil, ErrInvalidCPF
		}
		if err := db.Where("cpf = ?", normalized).First(&existing).Error; err == nil {
			return nil, ErrCPFTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cpf = &normalized
	}

	user := &models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		SocialName:   in.SocialName,
		Pronoun:      in.Pronoun,
		CPF:          cpf,
		Role:         models.RoleBeneficiario,
		IsActive:     models.BoolPtr(true),
		AssistenteID: in.AssistenteID,
		OrgID:        in.OrgID,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateInput holds the mutable beneficiário fields. Pointer fields are
// applied only when set; SetAssistente/SetOrg distinguish "change" from
// "leave alone" so nil can mean unlink.
type UpdateInput struct {
	Name          *string
	SocialName    *string
	Pronoun       *string
	CPF           *string
	IsActive      *bool
	SetAssistente bool
	AssistenteID  *uint
	SetOrg        bool
	OrgID         *uint
}

// Update edits a beneficiário. Assistentes only reach their own caseload
// and cannot unlink or hand off to another assistente.
func (s *Service) Update(ctx context.Context, actor *models.User, id uint, in UpdateInput) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.Where("id = ? AND role = ?", id, models.RoleBeneficiario).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBeneficiarioNotFound
	}
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleAssistente {
		if user.AssistenteID == nil || *user.AssistenteID != actor.ID {
			return nil, ErrForbiddenScope
		}
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.SocialName != nil {
		updates["social_name"] = *in.SocialName
	}
	if in.Pronoun != nil {
		updates["pronoun"] = *in.Pronoun
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.CPF != nil {
		normalized, ok := validation.NormalizeCPF(*in.CPF)
		if !ok {
			return nil, ErrInvalidCPF
		}
		var existing models.User
		if err := db.Where("cpf = ? AND id <> ?", normalized, user.ID).First(&existing).Error; err == nil {
			return nil, ErrCPFTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["cpf"] = normalized
	}

	if in.SetAssistente {
		if in.AssistenteID == nil {
			if actor.Role != models.RoleAdmin {
				return nil, ErrForbiddenUnlink
			}
			updates["assistente_id"] = nil
		} else {
			if actor.Role == models.RoleAssistente && *in.AssistenteID != actor.ID {
				return nil, ErrForbiddenAssign
			}
			if err := s.ensureAssistente(ctx, *in.AssistenteID); err != nil {
				return nil, err
			}
			updates["assistente_id"] = *in.AssistenteID
		}
	}

	if in.SetOrg {
		if in.OrgID != nil {
			var org models.Org
			if err := db.First(&org, *in.OrgID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrOrgNotFound
				}
				return nil, err
			}
		}
		updates["org_id"] = in.OrgID
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// Vincular links a beneficiário to an assistente. Assistentes may only
// claim beneficiários that are unlinked or already theirs, and only for
// themselves.
func (s *Service) Vincular(ctx context.Context, actor *models.User, beneficiarioID, assistenteID uint) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.Where("id = ? AND role = ?", beneficiarioID, models.RoleBeneficiario).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBeneficiarioNotFound
	}
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleAssistente {
		if assistenteID != actor.ID {
			return nil, ErrForbiddenAssign
		}
		if user.AssistenteID != nil && *user.AssistenteID != actor.ID {
			return nil, ErrAlreadyLinked
		}
	}

	if err := s.ensureAssistente(ctx, assistenteID); err != nil {
		return nil, err
	}

	if err := db.Model(&user).Update("assistente_id", assistenteID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
