package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"quizmaker-service/internal/domain"
)

// Participants are aggregated per quiz so every read is a single round trip,
// in first-submission order like the memory store.
const selectQuiz = `
SELECT q.id, q.owner_id, q.title, q.grade_level, q.description, q.join_code, q.questions, q.created_at,
       COALESCE((
           SELECT json_agg(json_build_object('user', p.user_id, 'score', p.score, 'completedAt', p.completed_at)
                           ORDER BY p.seq)
           FROM quiz_participants p
           WHERE p.quiz_id = q.id
       ), '[]'::json)
FROM quizzes q`

// QuizRepository stores quizzes as rows with a JSONB question list; scores
// live in quiz_participants keyed by (quiz_id, user_id).
type QuizRepository struct {
	db DBTX
}

func NewQuizRepository(db DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(nonNilQuestions(quiz.Questions))
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO quizzes (id, owner_id, title, grade_level, description, join_code, questions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		quiz.ID, quiz.OwnerID, quiz.Title, quiz.GradeLevel, quiz.Description, quiz.JoinCode, string(questions), quiz.CreatedAt,
	)
	if err != nil {
		if code, constraint := pgError(err); code == codeUniqueViolation && constraint == "quizzes_join_code_key" {
			return domain.ErrJoinCodeTaken
		}
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return r.getOne(ctx, selectQuiz+` WHERE q.id = $1`, id)
}

func (r *QuizRepository) GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	return r.getOne(ctx, selectQuiz+` WHERE q.join_code = $1`, code)
}

func (r *QuizRepository) ExistsJoinCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE join_code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check join code: %w", err)
	}
	return exists, nil
}

func (r *QuizRepository) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	rows, err := r.db.Query(ctx, selectQuiz+` WHERE q.owner_id = $1 ORDER BY q.created_at DESC`, ownerID)
	if err != nil {
		if code, _ := pgError(err); code == codeInvalidText {
			return []domain.Quiz{}, nil
		}
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Quiz, 0)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

// UpdateQuiz leaves nil patch fields untouched. Owner, join code and
// participants are not updatable.
func (r *QuizRepository) UpdateQuiz(ctx context.Context, id string, patch domain.QuizPatch) (domain.Quiz, error) {
	var questions *string
	if patch.Questions != nil {
		raw, err := json.Marshal(nonNilQuestions(*patch.Questions))
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal questions: %w", err)
		}
		s := string(raw)
		questions = &s
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE quizzes SET
		     title       = COALESCE($2, title),
		     grade_level = COALESCE($3, grade_level),
		     description = COALESCE($4, description),
		     questions   = COALESCE($5::jsonb, questions)
		 WHERE id = $1`,
		id, patch.Title, patch.GradeLevel, patch.Description, questions,
	)
	if err != nil {
		if code, _ := pgError(err); code == codeInvalidText {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return r.GetQuiz(ctx, id)
}

func (r *QuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		if code, _ := pgError(err); code == codeInvalidText {
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) UpsertParticipant(ctx context.Context, quizID string, participant domain.Participant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO quiz_participants (quiz_id, user_id, score, completed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (quiz_id, user_id)
		 DO UPDATE SET score = EXCLUDED.score, completed_at = EXCLUDED.completed_at`,
		quizID, participant.UserID, participant.Score, participant.CompletedAt,
	)
	if err != nil {
		switch code, _ := pgError(err); code {
		case codeForeignKeyViolation, codeInvalidText:
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

func (r *QuizRepository) getOne(ctx context.Context, query, arg string) (domain.Quiz, error) {
	quiz, err := scanQuiz(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		if code, _ := pgError(err); code == codeInvalidText {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz         domain.Quiz
		questions    []byte
		participants []byte
	)
	err := row.Scan(
		&quiz.ID, &quiz.OwnerID, &quiz.Title, &quiz.GradeLevel, &quiz.Description,
		&quiz.JoinCode, &questions, &quiz.CreatedAt, &participants,
	)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("scan quiz: %w", err)
	}
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(participants, &quiz.Participants); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal participants: %w", err)
	}
	if quiz.Participants == nil {
		quiz.Participants = []domain.Participant{}
	}
	return quiz, nil
}

func nonNilQuestions(questions []domain.Question) []domain.Question {
	if questions == nil {
		return []domain.Question{}
	}
	return questions
}
