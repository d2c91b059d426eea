package repository

const leadColumns = `id, consumer_name, consumer_phone, source, qualification_status,
	qualified_for_user_id, entered_pool_at, assigned_agent_id, assigned_at, created_at, updated_at`

const getConfigurationQuery = `
	SELECT radius_meters, minutes_to_priority_pool, minutes_to_general_pool, updated_by, updated_at
	FROM pool_configuration
	WHERE id = 1`

const ensureConfigurationQuery = `
	INSERT INTO pool_configuration (id, radius_meters, minutes_to_priority_pool, minutes_to_general_pool)
	VALUES (1, 0, 0, 0)
	ON CONFLICT (id) DO NOTHING`

const ensurePoolsQuery = `
	INSERT INTO pools (name)
	SELECT unnest($1::text[])
	ON CONFLICT (name) DO NOTHING`

const saveConfigurationQuery = `
	INSERT INTO pool_configuration (id, radius_meters, minutes_to_priority_pool, minutes_to_general_pool, updated_by, updated_at)
	VALUES (1, $1, $2, $3, $4, now())
	ON CONFLICT (id) DO UPDATE SET
		radius_meters = EXCLUDED.radius_meters,
		minutes_to_priority_pool = EXCLUDED.minutes_to_priority_pool,
		minutes_to_general_pool = EXCLUDED.minutes_to_general_pool,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	RETURNING radius_meters, minutes_to_priority_pool, minutes_to_general_pool, updated_by, updated_at`

const deletePermissionsQuery = `DELETE FROM pool_permissions WHERE pool_name = $1`

const insertPermissionsQuery = `
	INSERT INTO pool_permissions (pool_name, user_id)
	SELECT $1::text, unnest($2::uuid[])
	ON CONFLICT DO NOTHING`

const listPermissionsQuery = `
	SELECT pool_name, user_id
	FROM pool_permissions
	ORDER BY pool_name, created_at, user_id`

const permittedPoolsQuery = `
	SELECT pool_name
	FROM pool_permissions
	WHERE user_id = $1
	ORDER BY pool_name DESC`

const getLeadQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE id = $1`

const listRoutedToQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE qualification_status = 'waiting' AND qualified_for_user_id = $1
	ORDER BY created_at ASC
	LIMIT $2`

const listInPoolQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE qualification_status = $1
	ORDER BY entered_pool_at ASC, created_at ASC
	LIMIT $2`

// claimLeadQuery is the compare-and-swap: it only matches while the lead still
// has the status the caller validated, so concurrent claims and sweeps cannot
// both win the same row.
const claimLeadQuery = `
	UPDATE leads
	SET qualification_status = 'assigned',
		assigned_agent_id = $2,
		assigned_at = $3,
		qualified_for_user_id = NULL,
		entered_pool_at = NULL,
		updated_at = $3
	WHERE id = $1
		AND qualification_status = $4
		AND ($4::text <> 'waiting' OR qualified_for_user_id = $2)
	RETURNING ` + leadColumns

const insertActivityQuery = `
	INSERT INTO lead_activity (lead_id, actor_id, action, meta, created_at)
	VALUES ($1, $2, $3, $4, $5)`

const insertBulkActivityQuery = `
	INSERT INTO lead_activity (lead_id, actor_id, action, meta, created_at)
	SELECT unnest($1::uuid[]), NULL, $2::text, $3::jsonb, $4::timestamptz`

const escalateToPriorityQuery = `
	UPDATE leads
	SET qualification_status = 'in_priority_pool',
		qualified_for_user_id = NULL,
		entered_pool_at = $1,
		updated_at = $1
	WHERE qualification_status = 'waiting'
		AND created_at <= $2
	RETURNING id`

const escalateToGeneralQuery = `
	UPDATE leads
	SET qualification_status = 'in_general_pool',
		entered_pool_at = $1,
		updated_at = $1
	WHERE qualification_status = 'in_priority_pool'
		AND entered_pool_at <= $2
	RETURNING id`
