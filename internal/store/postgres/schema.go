package postgres

// Schema creation is idempotent. Nested fields are native JSONB here;
// foreign keys declare ON DELETE CASCADE so patient deletion removes
// owned medical records and appointments at the database level.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(50),
		date_of_birth TEXT,
		gender VARCHAR(20),
		address TEXT,
		emergency_contact VARCHAR(255),
		blood_type VARCHAR(10),
		allergies JSONB,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS medical_records (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
		record_type VARCHAR(100) NOT NULL,
		modality VARCHAR(100),
		diagnosis TEXT,
		symptoms JSONB,
		findings TEXT,
		recommendations JSONB,
		suggested_tests JSONB,
		image_path TEXT,
		confidence_score DOUBLE PRECISION,
		doctor_notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
		doctor_id VARCHAR(255) NOT NULL,
		doctor_name VARCHAR(255) NOT NULL,
		doctor_email VARCHAR(255) NOT NULL,
		appointment_date TEXT NOT NULL,
		appointment_time TEXT NOT NULL,
		symptoms TEXT,
		status VARCHAR(50) NOT NULL,
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_activity_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		user_email TEXT,
		activity_type TEXT NOT NULL,
		description TEXT NOT NULL,
		ip_address TEXT,
		user_agent TEXT,
		metadata JSONB,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
		session_id TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS system_logs (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		component TEXT NOT NULL,
		message TEXT NOT NULL,
		stack_trace TEXT,
		metadata JSONB,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS admin_users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		permissions JSONB NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS moderation_actions (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		admin_email TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		metadata JSONB,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS content_flags (
		id TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		content_id TEXT NOT NULL,
		reporter_id TEXT,
		reporter_email TEXT,
		reason TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS analytics_cache (
		id TEXT PRIMARY KEY,
		cache_key TEXT UNIQUE NOT NULL,
		data JSONB NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_patients_email ON patients(email)`,
	`CREATE INDEX IF NOT EXISTS idx_medical_records_patient ON medical_records(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_medical_records_type ON medical_records(record_type)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date)`,
}
