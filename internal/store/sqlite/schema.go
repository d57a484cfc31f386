package sqlite

// Schema creation is idempotent and runs on every startup. Foreign
// keys carry ON DELETE CASCADE so patient deletion removes owned rows
// at the storage layer; the foreign_keys pragma is set in the DSN.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		date_of_birth TEXT,
		gender TEXT,
		address TEXT,
		emergency_contact TEXT,
		blood_type TEXT,
		allergies TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS medical_records (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		record_type TEXT NOT NULL,
		modality TEXT,
		diagnosis TEXT,
		symptoms TEXT,
		findings TEXT,
		recommendations TEXT,
		suggested_tests TEXT,
		image_path TEXT,
		confidence_score REAL,
		doctor_notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (patient_id) REFERENCES patients (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		doctor_id TEXT NOT NULL,
		doctor_name TEXT NOT NULL,
		doctor_email TEXT NOT NULL,
		appointment_date TEXT NOT NULL,
		appointment_time TEXT NOT NULL,
		symptoms TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (patient_id) REFERENCES patients (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS user_activity_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		user_email TEXT,
		activity_type TEXT NOT NULL,
		description TEXT NOT NULL,
		ip_address TEXT,
		user_agent TEXT,
		metadata TEXT,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS system_logs (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		component TEXT NOT NULL,
		message TEXT NOT NULL,
		stack_trace TEXT,
		metadata TEXT,
		timestamp TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS admin_users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		permissions TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login TIMESTAMP,
		created_at TIMESTAMP NOT NULL
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
		metadata TEXT,
		timestamp TIMESTAMP NOT NULL
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
		timestamp TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS analytics_cache (
		id TEXT PRIMARY KEY,
		cache_key TEXT UNIQUE NOT NULL,
		data TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_patients_email ON patients(email)`,
	`CREATE INDEX IF NOT EXISTS idx_medical_records_patient ON medical_records(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_medical_records_type ON medical_records(record_type)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date)`,
}
