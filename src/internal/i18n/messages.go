package i18n

import "golang.org/x/text/language"

const (
	MsgTeamCreated        = "team.created"
	MsgTeamUpdated        = "team.updated"
	MsgTeamDeleted        = "team.deleted"
	MsgTeamSubmitted      = "team.submitted"
	MsgTeamApproved       = "team.approved"
	MsgTeamRejected       = "team.rejected"
	MsgTeamCompleted      = "team.completed"
	MsgMusicUploaded      = "team.music_uploaded"
	MsgPhotoUploaded      = "team.photo_uploaded"
	MsgRatingSaved        = "team.rating_saved"
	MsgScoringSaved       = "team.scoring_saved"
	MsgUploadNotAttached  = "upload.not_attached"
	MsgUnsupportedFormat  = "upload.unsupported_format"
	MsgOperationInFlight  = "team.busy"
	MsgPermissionDenied   = "team.forbidden"
	MsgTeamIncomplete     = "team.incomplete"
	MsgTeamInvalid        = "team.invalid"
	MsgTeamNotFound       = "team.not_found"
	MsgStatusChangeDenied = "team.invalid_status"
)

var builtin = map[language.Tag]map[string]string{
	language.English: {
		MsgTeamCreated:        "Team created",
		MsgTeamUpdated:        "Team updated",
		MsgTeamDeleted:        "Team deleted",
		MsgTeamSubmitted:      "Team submitted for review",
		MsgTeamApproved:       "Team approved",
		MsgTeamRejected:       "Team rejected",
		MsgTeamCompleted:      "Team marked as completed",
		MsgMusicUploaded:      "Music file uploaded",
		MsgPhotoUploaded:      "Team photo uploaded",
		MsgRatingSaved:        "Tech rehearsal rating saved",
		MsgScoringSaved:       "Scoring saved",
		MsgUploadNotAttached:  "File uploaded but the team record could not be updated",
		MsgUnsupportedFormat:  "Unsupported file format",
		MsgOperationInFlight:  "Another request for this team is still in progress",
		MsgPermissionDenied:   "You are not allowed to do this",
		MsgTeamIncomplete:     "Team is not complete yet",
		MsgTeamInvalid:        "Team has validation errors",
		MsgTeamNotFound:       "Team not found",
		MsgStatusChangeDenied: "This action is not available in the team's current status",
	},
	language.Spanish: {
		MsgTeamCreated:        "Equipo creado",
		MsgTeamUpdated:        "Equipo actualizado",
		MsgTeamDeleted:        "Equipo eliminado",
		MsgTeamSubmitted:      "Equipo enviado para revisión",
		MsgTeamApproved:       "Equipo aprobado",
		MsgTeamRejected:       "Equipo rechazado",
		MsgTeamCompleted:      "Equipo marcado como completado",
		MsgMusicUploaded:      "Archivo de música subido",
		MsgPhotoUploaded:      "Foto del equipo subida",
		MsgRatingSaved:        "Calificación del ensayo técnico guardada",
		MsgScoringSaved:       "Puntuación guardada",
		MsgUploadNotAttached:  "Archivo subido, pero no se pudo actualizar el equipo",
		MsgUnsupportedFormat:  "Formato de archivo no compatible",
		MsgOperationInFlight:  "Otra solicitud para este equipo sigue en curso",
		MsgPermissionDenied:   "No tienes permiso para hacer esto",
		MsgTeamIncomplete:     "El equipo aún no está completo",
		MsgTeamInvalid:        "El equipo tiene errores de validación",
		MsgTeamNotFound:       "Equipo no encontrado",
		MsgStatusChangeDenied: "Esta acción no está disponible en el estado actual del equipo",
	},
}
