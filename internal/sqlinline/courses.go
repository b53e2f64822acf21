package sqlinline

const QListCourses = `--sql 603876dd-b26d-493d-bdb6-47a4848be9f8
select id, title, image_src, is_quiz, media_asset_id, created_at, updated_at
from courses
order by id asc
limit $1::int offset $2::int;
`

const QSelectCourseByID = `--sql b6d234f7-20ea-423a-8cde-4c2e715670ad
select id, title, image_src, is_quiz, media_asset_id, created_at, updated_at
from courses
where id = $1::bigint;
`

const QInsertCourse = `--sql 771bc279-ea33-4650-b41d-cfb15f834c7c
insert into courses (title, image_src, is_quiz, media_asset_id)
values ($1::text, $2::text, $3::boolean, $4::text)
returning id, title, image_src, is_quiz, media_asset_id, created_at, updated_at;
`

const QUpdateCourse = `--sql bb6e7af0-269e-40f5-af50-e41ee6be392c
update courses
set title = $2::text,
    image_src = $3::text,
    is_quiz = $4::boolean,
    media_asset_id = coalesce($5::text, media_asset_id),
    updated_at = now()
where id = $1::bigint
returning id, title, image_src, is_quiz, media_asset_id, created_at, updated_at;
`

const QSetCourseMediaAsset = `--sql b6f8e49d-4916-44e8-9677-f708fc149159
update courses
set media_asset_id = $2::text,
    updated_at = now()
where id = $1::bigint;
`

const QDeleteCourse = `--sql c98ff492-979f-4eac-b15d-38abe64e6e17
delete from courses
where id = $1::bigint
returning id, title, image_src, is_quiz, media_asset_id, created_at, updated_at;
`
